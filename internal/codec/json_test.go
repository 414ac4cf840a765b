package codec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocelkit/ocelkit/internal/ocel"
	"github.com/ocelkit/ocelkit/internal/validate"
)

// richLog exercises every value kind, nested containers, histories with and
// without timestamps, declarations and globals.
func richLog(t *testing.T) *ocel.Log {
	t.Helper()

	log := ocel.NewLog()
	log.Globals["version"] = ocel.String("1.0")
	log.Globals["limits"] = ocel.Map{
		"max": ocel.Int(100),
		"tags": ocel.List{ocel.String("a"), ocel.Bool(true)},
	}
	log.EventAttrs["total"] = ocel.KindFloat
	log.EventAttrs["count"] = ocel.KindInt
	log.ObjectAttrs["status"] = ocel.KindString
	log.ObjectAttrs["updated"] = ocel.KindTimestamp

	e1 := ocel.NewEvent("e1", "pay", mustParse(t, "2024-03-01T10:00:00.000Z"))
	e1.Attributes["total"] = ocel.Float(12.5)
	e1.Attributes["count"] = ocel.Int(3)
	e1.AddRef("o1")
	e1.AddRef("o2")
	log.AddEvent(e1)

	e2 := ocel.NewEvent("e2", "ship", mustParse(t, "2024-03-02T08:30:00.250+01:00"))
	e2.AddRef("o1")
	log.AddEvent(e2)

	o1 := ocel.NewObject("o1", "order")
	open := mustParse(t, "2024-03-01T09:00:00.000Z")
	o1.Append("status", ocel.String("open"), &open)
	closed := mustParse(t, "2024-03-02T09:00:00.000Z")
	o1.Append("status", ocel.String("closed"), &closed)
	o1.Append("updated", ocel.NewTimestamp(closed), nil)
	log.AddObject(o1)

	o2 := ocel.NewObject("o2", "customer")
	log.AddObject(o2)
	return log
}

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := ocel.ParseTime(s)
	require.NoError(t, err)
	return ts
}

func TestJSONRoundTrip(t *testing.T) {
	log := richLog(t)

	data, err := EncodeJSON(log, Options{})
	require.NoError(t, err)

	decoded, err := DecodeJSON(data, Options{})
	require.NoError(t, err)
	assert.True(t, ocel.Equal(log, decoded))
}

func TestJSONRoundTripPretty(t *testing.T) {
	log := richLog(t)

	data, err := EncodeJSON(log, Options{Pretty: true})
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  ")

	decoded, err := DecodeJSON(data, Options{})
	require.NoError(t, err)
	assert.True(t, ocel.Equal(log, decoded))
}

func TestJSONWireShape(t *testing.T) {
	log := ocel.NewLog()
	log.EventAttrs["total"] = ocel.KindFloat
	e := ocel.NewEvent("e1", "pay", mustParse(t, "2024-03-01T10:00:00.000Z"))
	e.Attributes["total"] = ocel.Float(12.5)
	e.AddRef("o1")
	log.AddEvent(e)
	o := ocel.NewObject("o1", "order")
	at := mustParse(t, "2024-03-01T09:00:00.000Z")
	o.Append("status", ocel.String("open"), &at)
	log.AddObject(o)

	data, err := EncodeJSON(log, Options{})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"eventAttributes": {"total": "float"},
		"events": {
			"e1": {
				"activity": "pay",
				"timestamp": "2024-03-01T10:00:00.000Z",
				"refs": ["o1"],
				"attributes": {"total": {"type": "float", "value": 12.5}}
			}
		},
		"objects": {
			"o1": {
				"type": "order",
				"attributes": {
					"status": [{"type": "string", "value": "open", "time": "2024-03-01T09:00:00.000Z"}]
				}
			}
		}
	}`, string(data))
}

func TestJSONEncodeDeterministic(t *testing.T) {
	log := richLog(t)
	first, err := EncodeJSON(log, Options{})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := EncodeJSON(log, Options{})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestJSONEncodeValidateFailsClosed(t *testing.T) {
	log := ocel.NewLog()
	log.EventAttrs["total"] = ocel.KindFloat
	e := ocel.NewEvent("e1", "pay", mustParse(t, "2024-03-01T10:00:00.000Z"))
	e.Attributes["total"] = ocel.Int(12) // declared float
	log.AddEvent(e)

	data, err := EncodeJSON(log, Options{Validate: true})
	assert.Nil(t, data)
	var verr *validate.ValidationError
	require.ErrorAs(t, err, &verr)

	// Without validation the same log encodes fine.
	_, err = EncodeJSON(log, Options{})
	assert.NoError(t, err)
}

func TestJSONDecodeValidateFailsClosed(t *testing.T) {
	// Well-formed wire document whose value kind contradicts the
	// declaration. Structural schema passes; semantic validation must not.
	doc := `{
		"eventAttributes": {"total": "float"},
		"events": {
			"e1": {
				"activity": "pay",
				"timestamp": "2024-03-01T10:00:00.000Z",
				"attributes": {"total": {"type": "int", "value": 12}}
			}
		},
		"objects": {}
	}`
	log, err := DecodeJSON([]byte(doc), Options{Validate: true})
	assert.Nil(t, log)
	var verr *validate.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Violations, 1)
	assert.Equal(t, "e1", verr.Violations[0].ID)

	// Without validation the document decodes; the mismatch is the
	// caller's problem.
	log, err = DecodeJSON([]byte(doc), Options{})
	require.NoError(t, err)
	assert.Equal(t, ocel.Int(12), log.Events["e1"].Attributes["total"])
}

func TestJSONDecodeStructuralSchemaFailsClosed(t *testing.T) {
	doc := `{"events": {"e1": {"timestamp": "2024-03-01T10:00:00.000Z"}}, "objects": {}}`
	log, err := DecodeJSON([]byte(doc), Options{Validate: true})
	assert.Nil(t, log)
	var verr *validate.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestJSONDecodeMalformedInput(t *testing.T) {
	log, err := DecodeJSON([]byte(`{"events": `), Options{})
	assert.Nil(t, log)
	var derr *DecodeError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, FormatJSON, derr.Format)
}

func TestJSONDecodeUnknownDeclaredKind(t *testing.T) {
	doc := `{"eventAttributes": {"total": "decimal"}, "events": {}, "objects": {}}`
	log, err := DecodeJSON([]byte(doc), Options{})
	assert.Nil(t, log)
	var derr *DecodeError
	require.ErrorAs(t, err, &derr)
	assert.Contains(t, derr.Reason, "decimal")
}

func TestJSONDecodeBadTimestamp(t *testing.T) {
	doc := `{"events": {"e1": {"activity": "pay", "timestamp": "yesterday"}}, "objects": {}}`
	_, err := DecodeJSON([]byte(doc), Options{})
	var derr *DecodeError
	require.ErrorAs(t, err, &derr)
	assert.Contains(t, derr.Reason, "e1")
}

func TestJSONDispatch(t *testing.T) {
	log := richLog(t)
	data, err := Encode(FormatJSON, log, Options{})
	require.NoError(t, err)
	decoded, err := Decode(FormatJSON, data, Options{})
	require.NoError(t, err)
	assert.True(t, ocel.Equal(log, decoded))

	_, err = Decode(Format("csv"), data, Options{})
	assert.Error(t, err)
	_, err = Encode(Format("csv"), log, Options{})
	assert.Error(t, err)
}
