package storage

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/subdesk/pkg/plans"
	"github.com/platinummonkey/subdesk/pkg/subscribers"
)

func testSubscriber(t *testing.T, name, phone, planName string, used float64) *subscribers.Subscriber {
	t.Helper()
	var plan *plans.Plan
	if planName != "" {
		var found bool
		plan, found = plans.DefaultCatalog().Lookup(planName)
		require.True(t, found, "unknown plan %s", planName)
	}
	s, err := subscribers.New(subscribers.Params{Name: name, PhoneNumber: phone, Plan: plan, InitialUsage: used})
	require.NoError(t, err)
	return s
}

type tuple struct {
	Name, Phone, Plan string
	Used              float64
}

func tuples(subs []*subscribers.Subscriber) []tuple {
	out := make([]tuple, 0, len(subs))
	for _, s := range subs {
		out = append(out, tuple{s.Name(), s.PhoneNumber(), s.PlanName(), s.DataUsed()})
	}
	return out
}

func TestEncodeLine(t *testing.T) {
	tests := []struct {
		name string
		sub  *subscribers.Subscriber
		want string
	}{
		{"fractional usage", testSubscriber(t, "Alice", "+38 099 123 4567", "Basic", 12.5), "Alice|+38 099 123 4567|Basic|12.5"},
		{"integral usage", testSubscriber(t, "Bob", "555", "Super Plus", 5), "Bob|555|Super Plus|5"},
		{"zero usage", testSubscriber(t, "Carol", "1", "Unlimited", 0), "Carol|1|Unlimited|0"},
		{"no plan", testSubscriber(t, "Dan", "2", "", 1.25), "Dan|2||1.25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EncodeLine(tt.sub))
		})
	}
}

func TestDecodeLine(t *testing.T) {
	catalog := plans.DefaultCatalog()

	t.Run("valid line", func(t *testing.T) {
		s, err := DecodeLine("Alice|+38 099 123 4567|Turbo|12.5", catalog)
		require.NoError(t, err)
		assert.Equal(t, tuple{"Alice", "+38 099 123 4567", "Turbo", 12.5}, tuples([]*subscribers.Subscriber{s})[0])
	})

	t.Run("accepts values written with a trailing .0", func(t *testing.T) {
		s, err := DecodeLine("Alice|1|Basic|5.0", catalog)
		require.NoError(t, err)
		assert.Equal(t, 5.0, s.DataUsed())
	})

	t.Run("unknown plan falls back to default", func(t *testing.T) {
		s, err := DecodeLine("Alice|1|Gold Retired|3", catalog)
		require.NoError(t, err)
		assert.Same(t, catalog.Default(), s.Plan())
	})

	t.Run("empty plan name falls back to default", func(t *testing.T) {
		s, err := DecodeLine("Alice|1||3", catalog)
		require.NoError(t, err)
		assert.Same(t, catalog.Default(), s.Plan())
	})

	malformed := map[string]string{
		"three fields":       "Alice|1|Basic",
		"five fields":        "Alice|1|Basic|3|extra",
		"delimiter in field": "Al|ice|1|Basic|3",
		"non-numeric usage":  "Alice|1|Basic|lots",
		"infinite usage":     "Alice|1|Basic|Inf",
		"nan usage":          "Alice|1|Basic|NaN",
		"negative usage":     "Alice|1|Basic|-2",
		"empty name":         "|1|Basic|2",
		"empty phone":        "Alice||Basic|2",
	}
	for name, line := range malformed {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeLine(line, catalog)
			assert.ErrorIs(t, err, ErrMalformedLine)
		})
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	subs := []*subscribers.Subscriber{
		testSubscriber(t, "Alice", "+38 099 123 4567", "Basic", 4.75),
		testSubscriber(t, "Bob", "+38 050 000 0000", "Unlimited", 1234.5),
		testSubscriber(t, "Carol", "+1 555 0100", "Super Plus", 0),
		testSubscriber(t, "Dan", "+44 20 7946 0000", "Premium", 0.1),
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, subs))

	loaded, skipped, err := Decode(&buf, plans.DefaultCatalog())
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.Equal(t, tuples(subs), tuples(loaded))
}

func TestDecode_SkipsMalformedLines(t *testing.T) {
	input := strings.Join([]string{
		"Alice|1|Basic|1",
		"Bob|2|Premium",
		"",
		"Carol|3|Turbo|2\r",
		"Dan|4|Turbo|2|extra",
		"Eve|5|Unlimited|7.5",
	}, "\n")

	subs, skipped, err := Decode(strings.NewReader(input), plans.DefaultCatalog())
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, subs, 3)
	assert.Equal(t, []string{"Alice", "Carol", "Eve"}, []string{subs[0].Name(), subs[1].Name(), subs[2].Name()})
	assert.Equal(t, "Turbo", subs[1].PlanName())
}

func TestDecode_SkipsOverlongLine(t *testing.T) {
	input := "Alice|1|Basic|1\n" + strings.Repeat("x", 2<<20) + "\nBob|2|Premium|3\n"

	subs, skipped, err := Decode(strings.NewReader(input), plans.DefaultCatalog())
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, []tuple{
		{"Alice", "1", "Basic", 1},
		{"Bob", "2", "Premium", 3},
	}, tuples(subs))
}

func TestDecode_LastLineWithoutNewline(t *testing.T) {
	subs, skipped, err := Decode(strings.NewReader("Alice|1|Basic|1\nBob|2|Premium|3"), plans.DefaultCatalog())
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.Len(t, subs, 2)
}

func TestDecode_Empty(t *testing.T) {
	subs, skipped, err := Decode(strings.NewReader(""), plans.DefaultCatalog())
	require.NoError(t, err)
	assert.Empty(t, subs)
	assert.Zero(t, skipped)
}
