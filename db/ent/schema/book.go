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
	"github.com/storylingo/storylingo/constants"
	"github.com/storylingo/storylingo/db/ent/schema/utils"

	"github.com/google/uuid"
)

type Book struct{ ent.Schema }

func (Book) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "books"},
	}
}

func (Book) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).Default(uuid.New).Immutable(),
		// explicit FKs
		field.UUID("user_id", uuid.UUID{}),
		// public generation handle (story_<8hex>); one book per finished job
		field.String("job_id").NotEmpty().Unique().Immutable(),
		field.String("title").NotEmpty(),
		field.String("language_code").NotEmpty().MinLen(2).MaxLen(2).
			SchemaType(map[string]string{dialect.Postgres: "char(2)"}),
		field.String("level").NotEmpty().
			Validate(utils.EnumValidator(constants.CEFRLevels...)),
		field.String("genre").NotEmpty(),
		field.JSON("content", []string{}),
		field.Int("total_chapters").Default(constants.ChunksPerStory),
		field.Time("created_at").Default(time.Now),
	}
}

func (Book) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("user", User.Type).
			Ref("books").
			Field("user_id").
			Unique().
			Required(),
		edge.To("readers", UserBook.Type),
		edge.To("vocabulary", Vocabulary.Type),
	}
}

func (Book) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "created_at"),
		index.Fields("language_code"),
	}
}
