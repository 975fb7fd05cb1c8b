package models

// ExportDocument is the portable whole-library shape. Deck membership is
// denormalized by deck name: IDs are re-minted on reimport, so internal
// IDs would be meaningless in a backup.
type ExportDocument struct {
	Version int               `json:"version"`
	Decks   []ExportDeckEntry `json:"decks"`
	Cards   []ExportCard      `json:"cards"`
}

type ExportDeckEntry struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

type ExportCard struct {
	Deck        string   `json:"deck"`
	Prompt      string   `json:"prompt"`
	Answer      Answer   `json:"answer"`
	Explanation string   `json:"explanation"`
	Tags        []string `json:"tags"`
	CreatedAt   string   `json:"createdAt"`
}

// DeckExportCard is the minimal ID-free per-deck export shape.
type DeckExportCard struct {
	Prompt      string   `json:"prompt"`
	Answer      Answer   `json:"answer"`
	Explanation string   `json:"explanation"`
	Tags        []string `json:"tags"`
}
