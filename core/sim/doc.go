// Package sim generates a scenario world and drives it tick by tick.
//
// Each tick runs four phases over the whole fleet in creation order:
// claiming nearby passengers, loading and unloading, movement with its
// idle fallbacks, and terminal matching. A panic while handling one
// vehicle retires that vehicle only.
package sim
