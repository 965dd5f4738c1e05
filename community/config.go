// Package community declares the community test application: a versioned
// posts collection, a versioned menu global pointing at posts, and a startup
// hook that seeds a user, a post with a pending draft and the menu.
package community

import (
	cms "github.com/goliatone/go-cms-community"
	"github.com/goliatone/go-cms-community/schema"
)

const (
	PostsSlug = "posts"
	MenuSlug  = "menu"

	SchemaOutputFile = "./test/_community/schema.graphql"
)

// Credentials identify a seeded user.
type Credentials struct {
	Email    string
	Password string
}

// DevUser is the account created by Seed.
var DevUser = Credentials{Email: "dev@payloadcms.com", Password: "test"}

func PostsCollection() schema.Collection {
	return schema.Collection{
		Slug: PostsSlug,
		Fields: []schema.Field{
			{Name: "text", Type: schema.FieldText},
		},
		Versions: &schema.Versions{Drafts: true},
		Access:   schema.Access{Read: schema.Anyone()},
	}
}

func MenuGlobal() schema.Global {
	return schema.Global{
		Slug: MenuSlug,
		Fields: []schema.Field{
			{Name: "relationship", Type: schema.FieldRelationship, RelationTo: PostsSlug},
		},
		Versions: &schema.Versions{Drafts: true},
		Access:   schema.Access{Read: schema.Anyone()},
	}
}

// Config returns the application configuration on top of the runtime
// defaults. The returned OnInit seeds the store with user.
func Config(user Credentials) cms.Config {
	cfg := cms.DefaultConfig()
	cfg.Collections = []schema.Collection{PostsCollection()}
	cfg.Globals = []schema.Global{MenuGlobal()}
	cfg.GraphQL.SchemaOutputFile = SchemaOutputFile
	cfg.OnInit = Seeder(user)
	return cfg
}
