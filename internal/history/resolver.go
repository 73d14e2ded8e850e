package history

import (
	"fmt"
	"strconv"
	"strings"

	apierrors "github.com/diogo/agentchat/internal/errors"
)

// Resolve converts a user-friendly reference to a conversation ID.
//
// Supported references:
//   - "@last" - most recently updated conversation
//   - "1", "2", "3" - by position in the list (1-based, most recent first)
//   - an exact conversation ID
//   - any other text - case-insensitive title substring (must match exactly one)
func (s *Store) Resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty reference")
	}

	summaries, err := s.ListSummaries()
	if err != nil {
		return "", err
	}
	if len(summaries) == 0 {
		return "", fmt.Errorf("%w: no conversations stored", apierrors.ErrConversationNotFound)
	}

	if strings.EqualFold(ref, "@last") {
		return summaries[0].ID, nil
	}

	if index, err := strconv.Atoi(ref); err == nil {
		if index < 1 || index > len(summaries) {
			return "", fmt.Errorf("index %d out of range (1-%d)", index, len(summaries))
		}
		return summaries[index-1].ID, nil
	}

	for _, sum := range summaries {
		if sum.ID == ref {
			return sum.ID, nil
		}
	}

	refLower := strings.ToLower(ref)
	var matches []Summary
	for _, sum := range summaries {
		if strings.Contains(strings.ToLower(sum.Title), refLower) {
			matches = append(matches, sum)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", apierrors.ErrConversationNotFound, ref)
	case 1:
		return matches[0].ID, nil
	default:
		var titles []string
		for _, m := range matches {
			titles = append(titles, fmt.Sprintf("'%s'", m.Title))
		}
		return "", fmt.Errorf("multiple conversations match '%s': %s. Use ID or be more specific",
			ref, strings.Join(titles, ", "))
	}
}
