package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/Dosada05/foosball-tournament/models"
)

const archivePrefix = "archives/"

// ArchiveKey is the object key of an exported tournament.
func ArchiveKey(tournamentID string) string {
	return archivePrefix + tournamentID + ".json"
}

// ExportTournament uploads t as an indented JSON document and returns the
// upload result.
func ExportTournament(ctx context.Context, uploader FileUploader, t *models.Tournament) (*UploadResult, error) {
	body, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode tournament %s: %w", t.ID, err)
	}
	return uploader.Upload(ctx, ArchiveKey(t.ID), "application/json", bytes.NewReader(body))
}
