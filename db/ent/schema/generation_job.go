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

// GenerationJob tracks one story-generation run. job_id is the public handle
// clients poll with; status moves forward only (pending -> processing ->
// completed|failed) and chunks_done never decreases.
type GenerationJob struct{ ent.Schema }

func (GenerationJob) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "generation_jobs"},
	}
}

func (GenerationJob) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).Default(uuid.New).Immutable(),
		field.String("job_id").NotEmpty().Unique().Immutable(),
		// explicit FK; nil for jobs submitted without credentials, whose
		// stories live in blob storage only and never join a library
		field.UUID("user_id", uuid.UUID{}).Optional().Nillable(),
		field.String("language_code").NotEmpty().MinLen(2).MaxLen(2).
			SchemaType(map[string]string{dialect.Postgres: "char(2)"}),
		field.String("level").NotEmpty().
			Validate(utils.EnumValidator(constants.CEFRLevels...)),
		field.String("genre").NotEmpty(),
		field.String("prompt").NotEmpty().
			SchemaType(map[string]string{dialect.Postgres: "text"}),
		field.String("status").Default(string(constants.JobStatusPending)).
			Validate(utils.EnumValidator(constants.JobStatuses...)),
		field.Int("chunks_total").Default(constants.ChunksPerStory),
		field.Int("chunks_done").Default(0).Min(0),
		field.String("error_message").Optional().Nillable(),
		field.Time("created_at").Default(time.Now),
		field.Time("started_at").Optional().Nillable(),
		field.Time("finished_at").Optional().Nillable(),
	}
}

func (GenerationJob) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("user", User.Type).
			Ref("jobs").
			Field("user_id").
			Unique(),
	}
}

func (GenerationJob) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("status", "created_at"),
		index.Fields("user_id", "created_at"),
	}
}
