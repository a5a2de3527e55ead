// Package filter translates human-readable conditional expressions into the
// predicate trees understood by the EMS query API.
//
// An expression is a single comparison between a field and one or more literal
// values, for example:
//
//	'takeoff airport iata code' == 'KSEA'
//	'flight date (exact)' >= '2016-01-01'
//	'p301: fuel burned by all engines during cruise' > 1000
//	'takeoff airport iata code' in ['KSEA', 'KPDX']
//	1000 < 'pressure altitude'
//
// # Translation
//
// Translate splits the expression once on the first operator found, evaluates
// both sides as literals, resolves the field side through a catalog.Directory
// and dispatches on the field's declared type:
//
//	fp, err := filter.Translate(ctx, "'takeoff valid' == True", dir)
//	if err != nil {
//	    return err // *filter.TranslationError
//	}
//
// Each field type owns its operator table. Boolean fields accept only == and !=
// and become isTrue/isFalse filters; discrete values are replaced by their
// integer codes; dateTime fields accept only < and >= and carry an explicit UTC
// marker.
//
// # Known Limitation
//
// Splitting is a plain pattern search, not a parser. The comparison operators
// are searched first, anywhere in the string, then the membership operators
// (in, not in). Field names or values that themselves contain operator-like text
// are split at the wrong place.
//
// # Wire Format
//
// Nodes marshal to the API's JSON shape:
//
//	{"type": "filter", "value": {"operator": "equal", "args": [
//	    {"type": "field", "value": "[-hub-][field][...]"},
//	    {"type": "constant", "value": 42}
//	]}}
//
// Parse decodes the same JSON back into a Node tree.
package filter
