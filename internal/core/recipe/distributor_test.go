package recipe

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-manager/internal/core/ingredient"
)

func newDistributor() *Distributor {
	return NewDistributor(ingredient.DefaultVocabulary())
}

func names(ings []ingredient.Parsed) []string {
	out := make([]string, len(ings))
	for i, ing := range ings {
		out[i] = ing.Name
	}
	return out
}

func TestSplitSteps(t *testing.T) {
	got := SplitSteps("  Preheat oven \r\n\n\t\nMix flour\rBake  ")
	assert.Equal(t, []string{"Preheat oven", "Mix flour", "Bake"}, got)

	assert.Empty(t, SplitSteps(""))
	assert.Empty(t, SplitSteps(" \n \t \r\n"))
}

func TestDistributeSingleStep(t *testing.T) {
	d := newDistributor()

	steps := d.Distribute("Mix butter and sugar until fluffy",
		[]string{"1 cup butter", "3/4 cup sugar", "2 eggs", "2 cups flour"})

	require.Len(t, steps, 1)
	assert.Equal(t, 1, steps[0].Number)
	assert.Equal(t, "Mix butter and sugar until fluffy", steps[0].Action)
	assert.Equal(t, []string{"butter", "sugar", "eggs", "flour"}, names(steps[0].Ingredients))
	assert.Nil(t, steps[0].TimeMinutes)
	assert.NotNil(t, steps[0].Tools)
	assert.Empty(t, steps[0].Tools)
}

func TestDistributeTwoSteps(t *testing.T) {
	d := newDistributor()

	steps := d.Distribute("Preheat oven to 375F\nMix flour and sugar",
		[]string{"2 cups flour", "1 cup sugar", "1 tsp vanilla"})

	require.Len(t, steps, 2)
	assert.Equal(t, []string{"vanilla"}, names(steps[0].Ingredients))
	assert.Equal(t, []string{"flour", "sugar"}, names(steps[1].Ingredients))
}

func TestDistributeFirstMatchingStepWins(t *testing.T) {
	d := newDistributor()

	steps := d.Distribute("Melt the butter\nAdd butter and flour\nServe",
		[]string{"2 tbsp butter", "1 cup flour"})

	require.Len(t, steps, 3)
	assert.Equal(t, []string{"butter"}, names(steps[0].Ingredients))
	assert.Equal(t, []string{"flour"}, names(steps[1].Ingredients))
	assert.Empty(t, steps[2].Ingredients)
}

func TestDistributeFallbacksFollowMatchesInStepOne(t *testing.T) {
	d := newDistributor()

	steps := d.Distribute("Whisk the eggs\nFold in the cheese",
		[]string{"salt", "3 eggs", "100g cheese", "pepper"})

	require.Len(t, steps, 2)
	assert.Equal(t, []string{"eggs", "salt", "pepper"}, names(steps[0].Ingredients))
	assert.Equal(t, []string{"cheese"}, names(steps[1].Ingredients))
}

func TestDistributeNoInstructions(t *testing.T) {
	d := newDistributor()

	for _, instructions := range []string{"", "   ", "\n\n\r\n"} {
		steps := d.Distribute(instructions, []string{"2 eggs", "1 cup milk"})
		require.Len(t, steps, 1)
		assert.Equal(t, 1, steps[0].Number)
		assert.Equal(t, DefaultAction, steps[0].Action)
		assert.Equal(t, []string{"eggs", "milk"}, names(steps[0].Ingredients))
	}

	steps := d.Distribute("", nil)
	require.Len(t, steps, 1)
	assert.NotNil(t, steps[0].Ingredients)
	assert.Empty(t, steps[0].Ingredients)
}

func TestDistributeEmptyIngredients(t *testing.T) {
	d := newDistributor()

	steps := d.Distribute("Boil water\nAdd pasta\nDrain", []string{})
	require.Len(t, steps, 3)
	for _, s := range steps {
		assert.NotNil(t, s.Ingredients)
		assert.Empty(t, s.Ingredients)
	}
}

func TestDistributeKeepsDuplicates(t *testing.T) {
	d := newDistributor()

	steps := d.Distribute("Beat the eggs\nAdd the eggs", []string{"2 eggs", "2 eggs"})

	require.Len(t, steps, 2)
	assert.Len(t, steps[0].Ingredients, 2)
	assert.Empty(t, steps[1].Ingredients)
}

func TestDistributeInvariants(t *testing.T) {
	d := newDistributor()

	cases := []struct {
		instructions string
		ingredients  []string
	}{
		{"", nil},
		{"Mix", []string{"salt"}},
		{"Chop onion\n\nFry onion in oil\nAdd tomatoes\nSimmer", []string{"1 onion", "2 tbsp oil", "400g tomatoes", "salt", "a pinch of sugar"}},
		{"1. Cream butter\n2. Add eggs\n3. Fold in flour", []string{"1 cup butter", "2 eggs", "2 cups flour", "1 tsp baking soda"}},
		{"\r\nStep one\r\n\r\nStep two\r\n", []string{"", "   ", "of the"}},
	}

	for i, tc := range cases {
		t.Run(fmt.Sprintf("case-%d", i), func(t *testing.T) {
			steps := d.Distribute(tc.instructions, tc.ingredients)

			wantSteps := len(SplitSteps(tc.instructions))
			if wantSteps == 0 {
				wantSteps = 1
			}
			require.Len(t, steps, wantSteps)

			total := 0
			for n, s := range steps {
				assert.Equal(t, n+1, s.Number)
				assert.NotEmpty(t, s.Action)
				total += len(s.Ingredients)
			}
			assert.Equal(t, len(tc.ingredients), total)
		})
	}
}

func TestDistributeIsDeterministic(t *testing.T) {
	d := newDistributor()
	instructions := "Chop onion\nFry onion in oil\nAdd tomatoes and salt"
	ingredients := []string{"1 onion", "2 tbsp oil", "400g tomatoes", "salt", "basil"}

	first := d.Distribute(instructions, ingredients)
	second := d.Distribute(instructions, ingredients)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("Distribute not deterministic (-first +second):\n%s", diff)
	}
}

func TestAssign(t *testing.T) {
	d := newDistributor()
	parsed := d.Parser().ParseAll([]string{"1 cup sugar", "1 tsp vanilla", "2 cups flour"})

	got := d.Assign([]string{"Preheat oven", "Mix flour and SUGAR"}, parsed)

	want := []Assignment{
		{Index: 0, Step: 2, Kind: MatchKeyword},
		{Index: 1, Step: 1, Kind: MatchFallback},
		{Index: 2, Step: 2, Kind: MatchKeyword},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Assign mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "keyword", MatchKeyword.String())
	assert.Equal(t, "fallback", MatchFallback.String())
}

func TestDistributeWithCustomStopwords(t *testing.T) {
	vocab := ingredient.DefaultVocabulary()
	vocab.Stopwords = ingredient.WordSet([]string{"sauce"})
	d := NewDistributor(vocab)

	steps := d.Distribute("Warm the pan\nAdd the sauce", []string{"1 cup tomato sauce"})
	require.Len(t, steps, 2)
	assert.Equal(t, []string{"tomato sauce"}, names(steps[0].Ingredients))
	assert.Empty(t, steps[1].Ingredients)
}
