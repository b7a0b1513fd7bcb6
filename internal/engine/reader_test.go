package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReader_ValidTerms(t *testing.T) {
	r := NewReader()
	valid := []string{
		"parent(john, mary)",
		"likes(alice, pizza)",
		"friend(bob, carol)",
		"parent(john, X)",
		"age(person1, 30)",
		"price(item, 2.5)",
		"foo",
		"X",
		"'Quoted Atom'(a, 'it''s')",
		`say("hello, world")`,
		"member(X, [a, b, c])",
		"split([H|T], H, T)",
		"empty([])",
		"set({a, b})",
		"X = -1",
		"X is 3 * (4 + 5) - 2 / 1",
		"X >= 2, X =< 10",
		`\+ member(x, L)`,
		`\+(q(X))`,
		"(a -> b ; c)",
		"neg(- a)",
		"f(-)",
		"p :- q, r ; s",
		":- initialization(main)",
		"%comment\nfoo(bar) /* trailing */",
	}
	for _, src := range valid {
		assert.NoError(t, ReadTerm(src), src)
		assert.True(t, r.CheckSyntax(context.Background(), src), src)
	}
}

func TestReader_ValidStatements(t *testing.T) {
	r := NewReader()
	valid := []string{
		"assert(parent(john, mary)).",
		"assert(person(person1)).",
		"retract(resource_shared_with_group(resource1, group1)).",
		"asserta(person_custom_property(person1, age, 30)).",
		"parent(john, mary).",
		"parent(john, X).",
		"assert(my_rule(X) :- (p(a), q(b))).",
		`assert(not_rule(X) :- (p(X), \+(q(X)))).`,
		`assert(all_rule(X, Y) :- ((p(X), \+(q(Y))); r(X))).`,
		"assert(complex_rule(X, Y) :- ((p(X), q(Y)); (r(X), s(Y)))).",
		"assert(my_rule(X) :- a(X), b(X)).",
		"parent(john, mary). ",
	}
	for _, src := range valid {
		assert.True(t, r.CheckSyntax(context.Background(), src), src)
	}
}

func TestReader_InvalidInput(t *testing.T) {
	r := NewReader()
	invalid := []string{
		"",
		"   ",
		"likes(alice, pizza",
		"friend bob, carol)",
		"parentjohn, mary)",
		"parent john, mary)",
		"parent(john mary)",
		"parent(john, 123mary)",
		"parent(john, )",
		"parent(john, mary) extra",
		"assert(parent((john, mary)).",
		"parent(john, mary)..",
		"foo (a)",
		"'unterminated(x)",
		`say("open)`,
		"[a, b",
		"[a | b | c]",
		"f(a) /* open comment",
		"p(X) q(Y)",
		"p(,)",
		"a. b.",
	}
	for _, src := range invalid {
		assert.Error(t, ReadTerm(src), src)
		assert.False(t, r.CheckSyntax(context.Background(), src), src)
	}
}

func TestReader_ZeroArityCompound(t *testing.T) {
	// ISO has no p() syntax; SWI-Prolog accepts it, so queries without
	// arguments only pass the swipl engine.
	assert.Error(t, ReadTerm("ready()."))
	assert.NoError(t, ReadTerm("ready."))
}

func TestReader_EndToken(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{src: "p(a)", want: "p(a)\n."},
		{src: "p(a).", want: "p(a)."},
		{src: "p(a).  \n", want: "p(a).  \n"},
		{src: "p(a) % note", want: "p(a) % note\n."},
		{src: "X =..", want: "X =..\n."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, withEnd(tt.src), tt.src)
	}
}

func TestReader_ConcurrentChecks(t *testing.T) {
	r := NewReader()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				assert.True(t, r.CheckSyntax(context.Background(), "assert(p(X) :- q(X))."))
			} else {
				assert.False(t, r.CheckSyntax(context.Background(), "assert(p(X) :- q(X)."))
			}
		}(i)
	}
	wg.Wait()
}
