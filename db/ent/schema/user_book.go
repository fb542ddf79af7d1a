package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"

	"github.com/google/uuid"
)

// UserBook links a user to a book in their library with per-user state
// (favorite flag, last opened).
type UserBook struct{ ent.Schema }

func (UserBook) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "user_books"},
	}
}

func (UserBook) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).Default(uuid.New).Immutable(),
		// explicit FKs
		field.UUID("user_id", uuid.UUID{}),
		field.UUID("book_id", uuid.UUID{}),
		field.Bool("is_favorite").Default(false),
		field.Time("last_opened_at").Optional().Nillable(),
		field.Time("created_at").Default(time.Now),
	}
}

func (UserBook) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("user", User.Type).
			Ref("library").
			Field("user_id").
			Unique().
			Required(),
		edge.From("book", Book.Type).
			Ref("readers").
			Field("book_id").
			Unique().
			Required(),
	}
}

func (UserBook) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "book_id").Unique(),
		index.Fields("user_id", "is_favorite"),
	}
}
