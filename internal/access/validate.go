package access

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"taskboard/internal/models"
)

var (
	statusRule   = oneOf(models.TaskStatuses)
	priorityRule = oneOf(models.Priorities)
	roleRule     = oneOf(models.Roles)
	idRule       = validation.By(validID)
)

// oneOf accepts only the listed values. Empty values pass; pair with Required where needed.
func oneOf[T ~string](values []T) validation.Rule {
	elems := make([]any, len(values))
	names := make([]string, len(values))
	for i, v := range values {
		elems[i] = v
		names[i] = string(v)
	}
	return validation.In(elems...).Error("must be one of " + strings.Join(names, ", "))
}

func validID(value any) error {
	v, _ := validation.Indirect(value)
	id, _ := v.(string)
	if id == "" {
		return nil
	}
	if !models.ValidID(id) {
		return errors.New("must be a valid id")
	}
	return nil
}

// trimPtr trims the value behind s, keeping nil as nil.
func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// uniqueIDs drops repeated ids, keeping the first occurrence of each.
func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
