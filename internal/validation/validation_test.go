package validation

import (
	"errors"
	"strings"
	"testing"
)

type sample struct {
	Question string `json:"question" validate:"notblank"`
	Limit    int    `json:"limit,omitempty" validate:"gte=1"`
	Internal string `json:"-"`
}

func TestNew_NotBlank(t *testing.T) {
	t.Parallel()

	v := New()

	tests := []struct {
		name    string
		input   sample
		wantErr bool
	}{
		{"valid", sample{Question: "q", Limit: 1}, false},
		{"empty", sample{Question: "", Limit: 1}, true},
		{"whitespace only", sample{Question: " \t\n", Limit: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := v.Struct(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Struct() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFirstField(t *testing.T) {
	t.Parallel()

	v := New()

	if got := FirstField(v.Struct(sample{Limit: 1})); got != "question" {
		t.Errorf("FirstField() = %q, want question", got)
	}
	if got := FirstField(v.Struct(sample{Question: "q"})); got != "limit" {
		t.Errorf("FirstField() = %q, want limit", got)
	}
	if got := FirstField(errors.New("other")); got != "" {
		t.Errorf("FirstField(non-validation) = %q, want empty", got)
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	got := Describe(New().Struct(sample{}))
	for _, want := range []string{"sample.question: notblank", "sample.limit: gte=1"} {
		if !strings.Contains(got, want) {
			t.Errorf("Describe() = %q, missing %q", got, want)
		}
	}

	if got := Describe(errors.New("plain")); got != "plain" {
		t.Errorf("Describe(plain) = %q", got)
	}
}
