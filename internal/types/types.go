// README: Common identifier and coordinate value objects used across modules.
package types

type ID string

type Point struct {
	Lat float64
	Lng float64
}
