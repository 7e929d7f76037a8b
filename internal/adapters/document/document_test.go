package document_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sigmotoa/plantilla/internal/adapters/document"
	"github.com/smartystreets/goconvey/convey"
)

func TestDecode(t *testing.T) {
	convey.Convey("Given payload decoding", t, func() {
		convey.Convey("When a JSON object is decoded", func() {
			docs, err := document.Decode(strings.NewReader(`{"numero_camiseta": 10}`), document.FormatJSON)

			convey.Convey("Then numbers are kept as json.Number", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(docs), convey.ShouldEqual, 1)
				convey.So(docs[0]["numero_camiseta"], convey.ShouldEqual, json.Number("10"))
			})
		})

		convey.Convey("When a YAML list is decoded", func() {
			docs, err := document.Decode(strings.NewReader("- a: 1\n- a: 2\n"), document.FormatYAML)

			convey.So(err, convey.ShouldBeNil)
			convey.So(len(docs), convey.ShouldEqual, 2)
			convey.So(docs[1]["a"], convey.ShouldEqual, 2)
		})

		convey.Convey("When the top level is a scalar", func() {
			_, err := document.Decode(strings.NewReader(`42`), document.FormatJSON)

			convey.So(errors.Is(err, document.ErrDecode), convey.ShouldBeTrue)
		})

		convey.Convey("When a list holds a non-mapping", func() {
			_, err := document.Decode(strings.NewReader(`[{"a":1}, 3]`), document.FormatJSON)

			convey.So(errors.Is(err, document.ErrDecode), convey.ShouldBeTrue)
		})

		convey.Convey("When the JSON is malformed", func() {
			_, err := document.Decode(strings.NewReader(`{"a":`), document.FormatJSON)

			convey.So(errors.Is(err, document.ErrDecode), convey.ShouldBeTrue)
		})

		convey.Convey("When the payload is empty YAML", func() {
			docs, err := document.Decode(strings.NewReader(""), document.FormatYAML)

			convey.So(err, convey.ShouldBeNil)
			convey.So(docs, convey.ShouldBeEmpty)
		})
	})
}

func TestFormats(t *testing.T) {
	convey.Convey("Given format detection", t, func() {
		for path, want := range map[string]document.Format{
			"a/jugadores.json": document.FormatJSON,
			"partido.YAML":     document.FormatYAML,
			"partido.yml":      document.FormatYAML,
		} {
			got, err := document.FormatForPath(path)
			convey.So(err, convey.ShouldBeNil)
			convey.So(got, convey.ShouldEqual, want)
		}

		_, err := document.FormatForPath("notas.txt")
		convey.So(errors.Is(err, document.ErrUnsupportedFormat), convey.ShouldBeTrue)
		_, err = document.FormatForPath("sin_extension")
		convey.So(errors.Is(err, document.ErrUnsupportedFormat), convey.ShouldBeTrue)
	})
}

func TestDecodeFileAndEncode(t *testing.T) {
	convey.Convey("Given a file on disk", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "jugador.yaml")
		convey.So(os.WriteFile(path, []byte("nombre_completo: Ana\n"), 0o600), convey.ShouldBeNil)

		convey.Convey("When decoding it", func() {
			docs, format, err := document.DecodeFile(path)

			convey.So(err, convey.ShouldBeNil)
			convey.So(format, convey.ShouldEqual, document.FormatYAML)
			convey.So(docs[0]["nombre_completo"], convey.ShouldEqual, "Ana")
		})

		convey.Convey("When the file does not exist", func() {
			_, _, err := document.DecodeFile(filepath.Join(dir, "nope.json"))

			convey.So(errors.Is(err, os.ErrNotExist), convey.ShouldBeTrue)
		})

		convey.Convey("When encoding output", func() {
			var buf bytes.Buffer
			convey.So(document.Encode(&buf, document.FormatJSON, map[string]any{"id": 1}), convey.ShouldBeNil)
			convey.So(buf.String(), convey.ShouldEqual, "{\n  \"id\": 1\n}\n")

			buf.Reset()
			convey.So(document.Encode(&buf, document.FormatYAML, map[string]any{"id": 1}), convey.ShouldBeNil)
			convey.So(buf.String(), convey.ShouldEqual, "id: 1\n")
		})
	})
}
