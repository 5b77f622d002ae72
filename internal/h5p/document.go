package h5p

// Archive entry names, in the order they are written.
const (
	ManifestEntry = "manifest.json"
	ContentEntry  = "content/content.json"
)

// Manifest is the package descriptor stored as manifest.json.
type Manifest struct {
	Title                 string    `json:"title"`
	Language              string    `json:"language"`
	MainLibrary           string    `json:"mainLibrary"`
	EmbedTypes            []string  `json:"embedTypes"`
	License               string    `json:"license"`
	PreloadedDependencies []Library `json:"preloadedDependencies"`
}

// Content is the deck document stored as content/content.json.
type Content struct {
	Title       string    `json:"title"`
	Mode        string    `json:"mode"`
	Description string    `json:"description"`
	Dialogs     []Dialog  `json:"dialogs"`
	Behaviour   Behaviour `json:"behaviour"`
}

// Dialog is one card as the player library expects it.
type Dialog struct {
	Text   string `json:"text"`
	Answer string `json:"answer"`
}

// Behaviour holds the player display flags.
type Behaviour struct {
	EnableRetry                bool `json:"enableRetry"`
	DisableBackwardsNavigation bool `json:"disableBackwardsNavigation"`
	ScaleTextNotCards          bool `json:"scaleTextNotCards"`
	RandomCards                bool `json:"randomCards"`
	MaxProficiency             int  `json:"maxProficiency"`
	QuickProgression           bool `json:"quickProgression"`
	EnableSolutionsButton      bool `json:"enableSolutionsButton"`
	AutoAdvance                bool `json:"autoAdvance"`
	CaseSensitive              bool `json:"caseSensitive"`
}

// DefaultBehaviour returns the flags every generated deck uses.
func DefaultBehaviour() Behaviour {
	return Behaviour{
		EnableRetry:           true,
		MaxProficiency:        5,
		EnableSolutionsButton: true,
		CaseSensitive:         true,
	}
}

func newManifest(title, language string, lib Library) Manifest {
	return Manifest{
		Title:                 title,
		Language:              language,
		MainLibrary:           lib.MachineName,
		EmbedTypes:            []string{"iframe"},
		License:               "U",
		PreloadedDependencies: []Library{lib},
	}
}

func newContent(title, description string, cards []Card) Content {
	dialogs := make([]Dialog, len(cards))
	for i, c := range cards {
		dialogs[i] = Dialog{Text: c.Question, Answer: c.Answer}
	}
	return Content{
		Title:       title,
		Mode:        "normal",
		Description: description,
		Dialogs:     dialogs,
		Behaviour:   DefaultBehaviour(),
	}
}
