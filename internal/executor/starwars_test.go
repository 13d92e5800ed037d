package executor

import (
	"context"
	"errors"
	"testing"

	schema "github.com/hanpama/gqlengine/internal/schema"
)

const starWarsSDL = `
enum Episode { NEWHOPE EMPIRE JEDI }

interface Character {
  id: ID!
  name: String
  friends: [Character]
  appearsIn: [Episode]
  secretBackstory: String
}

type Human implements Character {
  id: ID!
  name: String
  friends: [Character]
  appearsIn: [Episode]
  homePlanet: String
  secretBackstory: String
}

type Droid implements Character {
  id: ID!
  name: String
  friends: [Character]
  appearsIn: [Episode]
  secretBackstory: String
  primaryFunction: String
}

type Query {
  hero(episode: Episode): Character
  human(id: String!): Human
  droid(id: String!): Droid
}
`

type character struct {
	ID              string
	Name            string
	Friends         []string
	AppearsIn       []string
	HomePlanet      string `json:"homePlanet"`
	PrimaryFunction string
	typename        string
}

func (c *character) GraphQLTypename() string { return c.typename }

var (
	luke = &character{ID: "1000", Name: "Luke Skywalker", Friends: []string{"1002", "1003", "2001"},
		AppearsIn: []string{"NEWHOPE", "EMPIRE", "JEDI"}, HomePlanet: "Tatooine", typename: "Human"}
	han = &character{ID: "1002", Name: "Han Solo", Friends: []string{"1000", "1003", "2001"},
		AppearsIn: []string{"NEWHOPE", "EMPIRE", "JEDI"}, typename: "Human"}
	leia = &character{ID: "1003", Name: "Leia Organa", Friends: []string{"1000", "1002", "2001"},
		AppearsIn: []string{"NEWHOPE", "EMPIRE", "JEDI"}, HomePlanet: "Alderaan", typename: "Human"}
	r2d2 = &character{ID: "2001", Name: "R2-D2", Friends: []string{"1000", "1002", "1003"},
		AppearsIn: []string{"NEWHOPE", "EMPIRE", "JEDI"}, PrimaryFunction: "Astromech", typename: "Droid"}

	characters = map[string]*character{"1000": luke, "1002": han, "1003": leia, "2001": r2d2}
)

func resolveFriends(ctx context.Context, source any, args map[string]any, info *ResolveInfo) (any, error) {
	c := source.(*character)
	friends := make([]*character, 0, len(c.Friends))
	for _, id := range c.Friends {
		friends = append(friends, characters[id])
	}
	return friends, nil
}

func resolveBackstory(ctx context.Context, source any, args map[string]any, info *ResolveInfo) (any, error) {
	return nil, errors.New("secretBackstory is secret.")
}

// newStarWars returns an executor over the Star Wars schema. Character
// fields are read from *character by the default resolver.
func newStarWars(t *testing.T) (*Executor, *schema.Schema) {
	t.Helper()
	sch := mustBuildSchema(t, starWarsSDL)
	rm := NewResolverMap().
		Field("Query", "hero", func(ctx context.Context, source any, args map[string]any, info *ResolveInfo) (any, error) {
			if args["episode"] == "EMPIRE" {
				return luke, nil
			}
			return r2d2, nil
		}).
		Field("Query", "human", func(ctx context.Context, source any, args map[string]any, info *ResolveInfo) (any, error) {
			if c, ok := characters[args["id"].(string)]; ok && c.typename == "Human" {
				return c, nil
			}
			return nil, nil
		}).
		Field("Query", "droid", func(ctx context.Context, source any, args map[string]any, info *ResolveInfo) (any, error) {
			if c, ok := characters[args["id"].(string)]; ok && c.typename == "Droid" {
				return c, nil
			}
			return nil, nil
		}).
		Field("Human", "friends", resolveFriends).
		Field("Droid", "friends", resolveFriends).
		Field("Human", "secretBackstory", resolveBackstory).
		Field("Droid", "secretBackstory", resolveBackstory)
	return NewExecutor(rm, sch), sch
}
