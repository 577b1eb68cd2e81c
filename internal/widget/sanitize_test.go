package widget

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeDropsUnknownKeys(t *testing.T) {
	out := Sanitize(map[string]string{
		KeySlug:          "my-profile",
		KeyBarEnabled:    "1",
		"evil":           "<script>alert(1)</script>",
		"trustify_other": "x",
	})

	assert.Equal(t, map[string]string{KeySlug: "my-profile", KeyBarEnabled: "1"}, out)
}

func TestSanitizeOmitsAbsentKeys(t *testing.T) {
	assert.Empty(t, Sanitize(map[string]string{"foo": "bar"}))
	assert.Equal(t, map[string]string{KeySlug: "x"}, Sanitize(map[string]string{KeySlug: "x"}))
}

func TestSanitizeBarFlag(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"on", "1"},
		{"1", "1"},
		{"", "1"},
		{"yes", "1"},
		{"true", "1"},
		{"0", "0"},
		{"00", "0"},
		{"false", "0"},
		{"OFF", "0"},
		{" no ", "0"},
	}
	for _, tt := range tests {
		out := Sanitize(map[string]string{KeyBarEnabled: tt.in})
		assert.Equal(t, tt.want, out[KeyBarEnabled], "input %q", tt.in)
	}
}

func TestSanitizeTextField(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"my-profile", "my-profile"},
		{"  my-profile \n", "my-profile"},
		{"<b>my</b>-profile", "my-profile"},
		{"<script>alert(1)</script>shop", "shop"},
		{`a"onmouseover="x`, "aonmouseover=x"},
		{"tab\tand\nnewline", "tab and newline"},
		{"a  lot   of space", "a lot of space"},
		{"100%25sure", "100sure"},
		{"x<y", "xy"},
		{"<<b>b>", "b"},
		{"bad\xffutf8", "badutf8"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeTextField(tt.in), "input %q", tt.in)
	}
}

func TestSanitizeTextFieldIsIdempotent(t *testing.T) {
	inputs := []string{
		"my-profile",
		"<a href='x'>link</a> text",
		"%%4141",
		"<<script>x</script>>",
		"line\r\nbreak\tand\x00null",
		"  spaced   out  ",
		`quote"s and 'apostrophes'`,
		"%2541",
	}
	for _, in := range inputs {
		once := SanitizeTextField(in)
		assert.Equal(t, once, SanitizeTextField(once), "input %q", in)
		assert.False(t, strings.ContainsAny(once, `<>"'`), "markup left in %q", once)
	}
}

func TestFilterNumberInt(t *testing.T) {
	assert.Equal(t, "123", FilterNumberInt("1a2b3"))
	assert.Equal(t, "-5", FilterNumberInt("-5px"))
	assert.Equal(t, "", FilterNumberInt("on"))
}
