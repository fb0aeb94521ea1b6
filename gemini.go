package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const transcribePrompt = `Analyse cette photo de grille de mots mêlés.

Recopie chaque ligne de la grille, de haut en bas, au format JSON suivant :
{
  "lines": ["MMMSXXMASM", "MSAMXMSMSA", ...]
}

Règles :
- Une chaîne par ligne de la grille, une lettre majuscule par case, sans espace.
- Toutes les lignes ont le même nombre de lettres.
- N'ajoute ni la liste des mots à trouver, ni le titre, ni aucun autre texte.
- Réponds UNIQUEMENT avec le JSON, sans commentaire ni markdown.`

// imageTranscriber turns a photo of a letter grid into grid rows.
type imageTranscriber interface {
	TranscribeImage(ctx context.Context, imageData []byte, mimeType string) ([]string, error)
}

// TranscribeImage sends an image to Gemini Flash and returns the grid rows it reads.
func (g *GeminiClient) TranscribeImage(ctx context.Context, imageData []byte, mimeType string) ([]string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName,
		[]*genai.Content{{
			Role: "user",
			Parts: []*genai.Part{
				{Text: transcribePrompt},
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: imageData}},
			},
		}},
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr(float32(0.1)),
			TopP:             genai.Ptr(float32(1)),
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("empty gemini response")
	}
	g.logger.Debug("transcription received", zap.Int("bytes", len(text)))

	return parseTranscription(text)
}

func parseTranscription(text string) ([]string, error) {
	var out struct {
		Lines []string `json:"lines"`
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("parse grid JSON: %w\nraw response: %s", err, text)
	}

	lines := make([]string, 0, len(out.Lines))
	for _, l := range out.Lines {
		l = strings.ToUpper(strings.Join(strings.Fields(l), ""))
		if l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("invalid grid: no lines in response")
	}
	return lines, nil
}
