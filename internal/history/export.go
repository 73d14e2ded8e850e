package history

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/diogo/agentchat/internal/models"
)

// authorHeading is the section title used for each author in markdown exports
var authorHeading = map[models.MessageAuthor]string{
	models.AuthorUser:   "You",
	models.AuthorAgent:  "Agent",
	models.AuthorSystem: "System",
}

// ExportMarkdown renders a conversation as a markdown document
func (s *Store) ExportMarkdown(id string) (string, error) {
	conv, err := s.GetConversation(id)
	if err != nil {
		return "", err
	}

	var sb strings.Builder

	sb.WriteString("# " + conv.Title + "\n\n")
	sb.WriteString("**Model:** " + conv.Model + "\n")
	sb.WriteString("**Created:** " + conv.CreatedAt.Format("2006-01-02 15:04:05") + "\n")
	sb.WriteString("**Updated:** " + conv.UpdatedAt.Format("2006-01-02 15:04:05") + "\n")
	sb.WriteString(fmt.Sprintf("**Messages:** %d\n\n---\n\n", len(conv.Messages)))

	for i, msg := range conv.Messages {
		sb.WriteString("## " + authorHeading[msg.Author] + "\n\n")
		sb.WriteString(msg.Content)
		sb.WriteString("\n")

		if i < len(conv.Messages)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String(), nil
}

// ExportJSON returns the stored conversation as indented JSON
func (s *Store) ExportJSON(id string) ([]byte, error) {
	conv, err := s.GetConversation(id)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal conversation: %w", err)
	}
	return data, nil
}
