package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Fingerprint hashes the graph together with a change reference. Triggering
// the same (graph, change) combination again yields the same fingerprint, so
// a completed run can be served from cache instead of re-executed.
func (g *Graph) Fingerprint(changeRef string) string {
	h := sha256.New()

	// Jobs are serialized in topological order so the fingerprint does not
	// depend on document ordering quirks.
	enc := json.NewEncoder(h)
	for _, name := range g.order {
		job := g.jobs[name]
		// JobSpec marshals cleanly; encoding errors cannot happen here.
		_ = enc.Encode(job)
	}
	h.Write([]byte{0})
	h.Write([]byte(changeRef))

	return hex.EncodeToString(h.Sum(nil))
}
