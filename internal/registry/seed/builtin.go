package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

//go:embed seed.json
var builtinSeedData []byte

// Builtin returns a fresh copy of the example registry.
func Builtin() models.Snapshot {
	snap, err := loadSeedData(builtinSeedData)
	if err != nil {
		// the embedded file is covered by tests
		panic(err)
	}
	return snap
}

func loadSeedData(data []byte) (models.Snapshot, error) {
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to parse seed data: %w", err)
	}
	return snap, nil
}
