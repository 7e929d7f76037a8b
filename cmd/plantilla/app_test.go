package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"
	"github.com/urfave/cli/v2"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(args ...string) (stdout, stderr *bytes.Buffer, err error) {
	stdout, stderr = &bytes.Buffer{}, &bytes.Buffer{}
	err = newApp(stdout, stderr).RunContext(context.Background(), append([]string{"plantilla"}, args...))
	return stdout, stderr, err
}

const matchesYAML = `
- equipo_local: Sigmotoa FC
  equipo_visitante: Rivales
  sigmotoa_es_local: false
  goles_local: 1
  goles_visitante: 1
- equipo_local: Otros
  equipo_visitante: Sigmotoa FC
  goles_local: 0
  goles_visitante: 2
`

func TestValidateCommand(t *testing.T) {
	convey.Convey("Given player documents", t, func() {
		path := writeFixture(t, "jugadores.json", `[
  {"nombre_completo": "Ana", "numero_camiseta": 10, "nacionalidad": "Colombia"},
  {"nombre_completo": "Bea", "numero_camiseta": "diez", "nacionalidad": "Perú"}
]`)

		convey.Convey("When running validate", func() {
			stdout, stderr, err := run("--metrics", "validate", "--kind", "player", path)

			convey.Convey("Then the report lists both documents and the run is rejected", func() {
				var coder cli.ExitCoder
				convey.So(errors.As(err, &coder), convey.ShouldBeTrue)
				convey.So(coder.ExitCode(), convey.ShouldEqual, exitRejected)
				convey.So(exitCode(err), convey.ShouldEqual, exitRejected)

				var report map[string]any
				convey.So(json.Unmarshal(stdout.Bytes(), &report), convey.ShouldBeNil)
				convey.So(report["run_id"], convey.ShouldNotBeEmpty)
				results := report["resultados"].([]any)
				convey.So(len(results), convey.ShouldEqual, 2)
				convey.So(results[0].(map[string]any)["valido"], convey.ShouldBeTrue)
				convey.So(results[1].(map[string]any)["valido"], convey.ShouldBeFalse)
				convey.So(report["resumen"], convey.ShouldResemble, map[string]any{"validos": 1.0, "invalidos": 1.0})

				convey.So(stderr.String(), convey.ShouldContainSubstring, "plantilla_validation_entities_accepted_total")
			})
		})

		convey.Convey("When the kind is unknown", func() {
			_, _, err := run("validate", "--kind", "equipo", path)

			convey.So(exitCode(err), convey.ShouldEqual, exitFailure)
		})

		convey.Convey("When no file is given", func() {
			_, _, err := run("validate", "--kind", "player")

			convey.So(exitCode(err), convey.ShouldEqual, exitFailure)
		})
	})
}

func TestOutcomeCommand(t *testing.T) {
	convey.Convey("Given match documents", t, func() {
		path := writeFixture(t, "partidos.yaml", matchesYAML)

		convey.Convey("When running outcome with YAML output", func() {
			stdout, _, err := run("--format", "yaml", "outcome", path)

			convey.Convey("Then each match gets its result", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(stdout.String(), convey.ShouldContainSubstring, "resultado: DREW")
				convey.So(stdout.String(), convey.ShouldContainSubstring, "resultado: null")
			})
		})
	})
}

func TestOutcomeRowShape(t *testing.T) {
	convey.Convey("Given accepted and rejected matches", t, func() {
		path := writeFixture(t, "mezcla.json", `[
  {"equipo_local": "Sigmotoa FC", "equipo_visitante": "Rivales", "sigmotoa_es_local": true, "goles_local": 3, "goles_visitante": 1},
  {"equipo_local": "Sigmotoa FC", "equipo_visitante": "Rivales", "goles_local": -1, "goles_visitante": 0}
]`)

		convey.Convey("When running outcome", func() {
			stdout, _, err := run("outcome", path)

			convey.Convey("Then every row carries the same status keys", func() {
				convey.So(exitCode(err), convey.ShouldEqual, exitRejected)
				var rows []map[string]any
				convey.So(json.Unmarshal(stdout.Bytes(), &rows), convey.ShouldBeNil)
				convey.So(len(rows), convey.ShouldEqual, 2)
				for _, row := range rows {
					convey.So(row, convey.ShouldContainKey, "valido")
					convey.So(row["tipo"], convey.ShouldEqual, "match")
				}
				convey.So(rows[0]["valido"], convey.ShouldBeTrue)
				convey.So(rows[0]["resultado"], convey.ShouldEqual, "WON")
				convey.So(rows[1]["valido"], convey.ShouldBeFalse)
			})
		})
	})
}

func TestPenaltiesCommand(t *testing.T) {
	convey.Convey("Given a match file", t, func() {
		path := writeFixture(t, "partidos.yaml", matchesYAML)

		convey.Convey("When recording penalties", func() {
			stdout, _, err := run("penalties", "--tracked", "5", "--opponent", "4", path)

			convey.Convey("Then every match carries the shootout", func() {
				convey.So(err, convey.ShouldBeNil)
				var rows []map[string]any
				convey.So(json.Unmarshal(stdout.Bytes(), &rows), convey.ShouldBeNil)
				convey.So(len(rows), convey.ShouldEqual, 2)
				entity := rows[0]["entidad"].(map[string]any)
				convey.So(entity["fue_penales"], convey.ShouldBeTrue)
				convey.So(entity["penales_resultado"], convey.ShouldResemble, map[string]any{"sigmotoa": 5.0, "oponente": 4.0})
			})
		})

		convey.Convey("When a score is negative", func() {
			_, _, err := run("penalties", "--tracked", "-1", "--opponent", "4", path)

			convey.So(exitCode(err), convey.ShouldEqual, exitRejected)
		})

		convey.Convey("When two files are given", func() {
			_, _, err := run("penalties", "--tracked", "1", "--opponent", "0", path, path)

			convey.So(exitCode(err), convey.ShouldEqual, exitFailure)
		})
	})
}

func TestExitCode(t *testing.T) {
	convey.Convey("Given a plain error", t, func() {
		convey.So(exitCode(errors.New("boom")), convey.ShouldEqual, exitFailure)
		convey.So(exitCode(cli.Exit("x", exitRejected)), convey.ShouldEqual, exitRejected)
	})
}
