package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"

	"github.com/google/uuid"
)

// Vocabulary is a word a user hovered while reading, with the translation
// shown at the time. hover_count tracks repeat lookups of the same word.
type Vocabulary struct{ ent.Schema }

func (Vocabulary) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "vocabulary"},
	}
}

func (Vocabulary) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).Default(uuid.New).Immutable(),
		// explicit FKs
		field.UUID("user_id", uuid.UUID{}),
		field.UUID("book_id", uuid.UUID{}),
		field.String("language_code").NotEmpty().MinLen(2).MaxLen(2).
			SchemaType(map[string]string{dialect.Postgres: "char(2)"}),
		field.String("word").NotEmpty(),
		field.String("translation").NotEmpty(),
		field.Int("hover_count").Default(1).Min(1),
		field.Time("last_seen_at").Default(time.Now),
		field.Time("created_at").Default(time.Now),
		field.Time("updated_at").Default(time.Now).UpdateDefault(time.Now),
	}
}

func (Vocabulary) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("user", User.Type).
			Ref("vocabulary").
			Field("user_id").
			Unique().
			Required(),
		edge.From("book", Book.Type).
			Ref("vocabulary").
			Field("book_id").
			Unique().
			Required(),
	}
}

func (Vocabulary) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "book_id", "language_code", "word").Unique(),
		index.Fields("user_id", "last_seen_at"),
		index.Fields("user_id", "hover_count"),
	}
}
