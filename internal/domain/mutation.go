package domain

// MutationState é o contrato observado pela UI para uma mutação pendente:
// idle → processing → {success | idle-with-error}.
type MutationState string

const (
	MutationIdle       MutationState = "idle"
	MutationProcessing MutationState = "processing"
	MutationSucceeded  MutationState = "success"
	MutationFailed     MutationState = "idle-with-error"
)

// CanStart reports whether a new recordTransaction may enter processing.
func (s MutationState) CanStart() bool {
	return s != MutationProcessing
}
