package prompt

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the confirmation prompt Graft node.
const NodeID graft.ID = "adapter.prompt"

func init() {
	graft.Register(graft.Node[*Terminal]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Terminal, error) {
			return New(os.Stdin, os.Stderr), nil
		},
	})
}
