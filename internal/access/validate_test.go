package access

import (
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"taskboard/internal/models"
)

func TestValidID(t *testing.T) {
	good := models.NewID()
	bad := "project-1"
	empty := ""
	var nilPtr *string

	cases := []struct {
		name  string
		value any
		ok    bool
	}{
		{"valid string", good, true},
		{"valid pointer", &good, true},
		{"malformed string", bad, false},
		{"malformed pointer", &bad, false},
		{"empty", empty, true},
		{"nil pointer", nilPtr, true},
	}
	for _, tc := range cases {
		if err := validation.Validate(tc.value, idRule); (err == nil) != tc.ok {
			t.Errorf("%s: Validate(%v) = %v, want ok=%v", tc.name, tc.value, err, tc.ok)
		}
	}
}
