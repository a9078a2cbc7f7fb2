package domain

import "context"

// RecipeSource provides recipes. Implementations can be embedded defaults,
// a directory of YAML files, or anything else honoring the structural
// contract.
type RecipeSource interface {
	List(ctx context.Context) ([]RecipeSummary, error)
	Get(ctx context.Context, id string) (*Recipe, error)
}

// ContentSource resolves a stage's instruction reference to display-ready
// text. The core passes the reference through untouched.
type ContentSource interface {
	Instructions(ctx context.Context, ref string) (string, error)
}

// SnapshotStore is the durable slot for the session snapshot. Load returns
// (nil, nil) when no usable snapshot exists — absent and corrupt look the
// same to callers.
type SnapshotStore interface {
	Save(ctx context.Context, snap *Snapshot) error
	Load(ctx context.Context) (*Snapshot, error)
	Clear(ctx context.Context) error
}

// Notifier delivers attention signals to the user. Implementations can write
// to the terminal, ring the bell, or hand off to a platform notifier.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}

// IntentParser converts raw user input into structured intents.
type IntentParser interface {
	Parse(ctx context.Context, input string) (*Intent, error)
}
