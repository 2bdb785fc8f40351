package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jobrunner/meridian/internal/adapters/geopackage"
	"github.com/jobrunner/meridian/internal/adapters/storage"
	"github.com/jobrunner/meridian/internal/adapters/wktfile"
	"github.com/jobrunner/meridian/internal/application"
	"github.com/jobrunner/meridian/internal/crs"
	"github.com/jobrunner/meridian/internal/domain"
	"github.com/jobrunner/meridian/internal/operation"
	"github.com/jobrunner/meridian/internal/ports/output"
	"github.com/jobrunner/meridian/internal/wkt"
)

var transformCmd = &cobra.Command{
	Use:   "transform x,y[,z]...",
	Short: "Transform coordinates between two systems",
	Example: `  meridian transform --from EPSG:4326 --to EPSG:3857 9,48 10.5,52.1
  meridian transform --catalog dhdn.prj --from EPSG:4326 --to EPSG:31467 9,48,100`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTransform,
}

var parseCmd = &cobra.Command{
	Use:   "parse <file|->",
	Short: "Parse WKT definitions and summarise them",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	transformCmd.Flags().String("from", domain.KeyWGS84, "source CRS key, name or WKT")
	transformCmd.Flags().String("to", domain.KeyWebMercator, "target CRS key, name or WKT")
	transformCmd.Flags().StringSlice("catalog", nil, "catalog files to load (.gpkg, .wkt, .prj)")
}

// cliLogger reports only errors, on stderr, so that stdout stays clean.
func cliLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func runTransform(cmd *cobra.Command, args []string) error {
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	catalogs, _ := cmd.Flags().GetStringSlice("catalog")
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := cliLogger()

	registry := application.NewCatalogRegistry(
		[]output.CatalogReader{geopackage.NewReader(), wktfile.NewReader()},
		storage.NewLocalStorage("."),
		&output.NoOpMetrics{},
		logger,
		".",
	)
	for _, path := range catalogs {
		if err := registry.LoadCatalog(ctx, path); err != nil {
			return fmt.Errorf("loading catalog %s: %w", path, err)
		}
	}

	coords := make([]domain.Coordinate, len(args))
	for i, arg := range args {
		c, err := parsePoint(arg)
		if err != nil {
			return err
		}
		coords[i] = c
	}

	svc := application.NewTransformService(
		registry,
		operation.NewFactory(logger),
		nil,
		&output.NoOpMetrics{},
		logger,
		application.TransformServiceConfig{MaxPoints: len(coords)},
	)
	resp, err := svc.Transform(ctx, domain.TransformRequest{Source: from, Target: to, Coordinates: coords})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, c := range resp.Coordinates {
		fmt.Fprintln(out, formatPoint(c))
	}
	if n := len(resp.Undefined); n > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d point(s) outside the domain of %s\n", n, resp.Operation)
	}
	return nil
}

// parsePoint reads "x,y" or "x,y,z".
func parsePoint(s string) (domain.Coordinate, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 && len(parts) != 3 {
		return domain.Coordinate{}, &domain.ValidationError{
			Field:      "point",
			Value:      s,
			Constraint: "x,y[,z]",
			Message:    "a point needs two or three comma-separated ordinates",
		}
	}
	ords := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return domain.Coordinate{}, &domain.ValidationError{
				Field:      "point",
				Value:      s,
				Constraint: "number",
				Message:    fmt.Sprintf("ordinate %d is not a number", i+1),
			}
		}
		ords[i] = v
	}
	c, _ := domain.CoordinateFromOrdinates(ords)
	return c, nil
}

func formatPoint(c domain.Coordinate) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	if c.HasZ {
		return f(c.X) + " " + f(c.Y) + " " + f(c.Z)
	}
	return f(c.X) + " " + f(c.Y)
}

func runParse(cmd *cobra.Command, args []string) error {
	var r io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	defs := wkt.Split(string(data))
	if len(defs) == 0 {
		return &domain.ValidationError{Field: "wkt", Value: args[0], Constraint: "required", Message: "no WKT definition found"}
	}

	out := cmd.OutOrStdout()
	failed := 0
	for i, text := range defs {
		cs, err := wkt.ParseCoordinateSystem(text)
		if err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "definition %d: %v\n", i+1, err)
			continue
		}
		fmt.Fprintln(out, describe(cs))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d definitions failed to parse", failed, len(defs))
	}
	return nil
}

// describe renders one summary line per coordinate system.
func describe(cs crs.CoordinateSystem) string {
	info := cs.Description()
	var b strings.Builder

	switch c := cs.(type) {
	case *crs.GeographicCS:
		b.WriteString("geographic")
	case *crs.GeocentricCS:
		b.WriteString("geocentric")
	case *crs.ProjectedCS:
		b.WriteString("projected(" + c.Projection.ClassName + ")")
	case *crs.FittedCS:
		b.WriteString("fitted")
	default:
		b.WriteString("unknown")
	}

	fmt.Fprintf(&b, "\t%q", info.Name)
	if info.HasAuthority() {
		b.WriteString("\t" + domain.FormatKey(info.Authority, info.AuthorityCode))
	} else {
		b.WriteString("\t-")
	}

	axes := make([]string, cs.Dimension())
	for i := range axes {
		axes[i] = cs.Axis(i).Orientation.String()
	}
	fmt.Fprintf(&b, "\t%dD [%s]", cs.Dimension(), strings.Join(axes, ","))
	return b.String()
}
