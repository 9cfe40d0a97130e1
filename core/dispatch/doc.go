// Package dispatch decides whether a vehicle claims the nearest waiting
// passenger it found. Policies are strategies injected into vehicles at
// construction time.
package dispatch
