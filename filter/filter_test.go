package filter

import (
	"github.com/hugr-lab/emsquery/catalog"
)

const (
	idTakeoffValid   = "[-hub-][field][takeoff-valid]"
	idTakeoffAirport = "[-hub-][field][takeoff-airport]"
	idAltitude       = "[-hub-][field][pressure-altitude]"
	idTailNumber     = "[-hub-][field][tail-number]"
	idFlightDate     = "[-hub-][field][flight-date]"
)

// testDirectory returns a directory with one field of every type.
func testDirectory() *catalog.StaticDirectory {
	dir := catalog.NewStaticDirectory(
		catalog.Field{ID: idTakeoffValid, Type: catalog.TypeBoolean, Name: "Takeoff Valid"},
		catalog.Field{ID: idTakeoffAirport, Type: catalog.TypeDiscrete, Name: "Takeoff Airport"},
		catalog.Field{ID: idAltitude, Type: catalog.TypeNumber, Name: "Pressure Altitude"},
		catalog.Field{ID: idTailNumber, Type: catalog.TypeString, Name: "Tail Number"},
		catalog.Field{ID: idFlightDate, Type: catalog.TypeDateTime, Name: "Flight Date"},
	)
	dir.SetValues(idTakeoffAirport, []catalog.ValueEntry{
		{Key: 1, Value: "KSEA"},
		{Key: 2, Value: "KPDX"},
		{Key: 3, Value: "KLAX"},
	})
	return dir
}
