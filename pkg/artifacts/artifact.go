// Package artifacts persists the audit bundle of a simulation: the three
// hashed mandates, the connector echo, and the trust/storage metadata.
// Backends are interchangeable behind the Repository interface.
package artifacts

// MandateEnvelope pairs a mandate payload with its canonical content hash.
type MandateEnvelope struct {
	Hash    string         `json:"hash"`
	Payload map[string]any `json:"payload"`
}

// SimulationArtifact is the persisted bundle for one simulation. It is
// produced once per processing attempt and immutable after creation; a retry
// replaces the stored value wholesale.
type SimulationArtifact struct {
	Intent    *MandateEnvelope `json:"intent,omitempty"`
	Cart      *MandateEnvelope `json:"cart,omitempty"`
	Payment   *MandateEnvelope `json:"payment,omitempty"`
	Metadata  map[string]any   `json:"metadata"`
	Connector map[string]any   `json:"connector,omitempty"`
}
