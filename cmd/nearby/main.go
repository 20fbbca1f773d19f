package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"shelter-finder-service/internal/adapters/position"
	"shelter-finder-service/internal/config"
	"shelter-finder-service/internal/domain"
	"shelter-finder-service/internal/platform/logging"
	"shelter-finder-service/internal/ports"
	"shelter-finder-service/internal/services"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	lat, lng    float64
	query       string
	nmeaPath    string
	gps         bool
	limit       int
	radius      float64
	unbounded   bool
	types       []string
	minCapacity int
	jsonOut     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		opts   options
		cfg    config.Config
		logger *zap.Logger
	)

	cmd := &cobra.Command{
		Use:   "nearby",
		Short: "List the evacuation shelters closest to a position",
		Long: `Ranks shelters by great-circle distance from a reference point.

The reference is one of:
  --lat/--lng     explicit coordinates
  --query         a place keyword resolved by the configured map search
  --nmea          the first GPS fix in an NMEA capture file
  --gps           the first GPS fix from the receiver on GPS_PORT

Examples:
  nearby --lat 37.456257 --lng 126.705208 --radius 2000
  nearby --query "인천광역시청" --limit 3 --type park`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.Load(); err != nil {
				return err
			}
			if logger, err = logging.New(cfg.AppEnv, cfg.LogLevel); err != nil {
				return err
			}
			zap.ReplaceGlobals(logger)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("limit") {
				opts.limit = cfg.NearbyLimit
			}
			if !cmd.Flags().Changed("radius") {
				opts.radius = cfg.NearbyRadiusMeters
			}
			if err := opts.validate(cmd); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := run(ctx, a, opts)
			if err != nil {
				return err
			}

			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			return writeTable(cmd.OutOrStdout(), res)
		},
	}

	f := cmd.Flags()
	f.Float64Var(&opts.lat, "lat", 0, "reference latitude in degrees")
	f.Float64Var(&opts.lng, "lng", 0, "reference longitude in degrees")
	f.StringVarP(&opts.query, "query", "q", "", "place keyword to search for")
	f.StringVar(&opts.nmeaPath, "nmea", "", "NMEA capture file to read the position from")
	f.BoolVar(&opts.gps, "gps", false, "read the position from the serial GPS receiver (GPS_PORT)")
	f.IntVarP(&opts.limit, "limit", "n", 0, "maximum number of shelters, 0 for all (default NEARBY_LIMIT)")
	f.Float64VarP(&opts.radius, "radius", "r", 0, "search radius in meters (default NEARBY_RADIUS_METERS)")
	f.BoolVar(&opts.unbounded, "unbounded", false, "rank every shelter regardless of distance")
	f.StringSliceVarP(&opts.types, "type", "t", nil, "facility types to include (repeatable)")
	f.IntVar(&opts.minCapacity, "min-capacity", 0, "minimum shelter capacity")
	f.BoolVar(&opts.jsonOut, "json", false, "print JSON instead of a table")

	cmd.MarkFlagsRequiredTogether("lat", "lng")
	cmd.MarkFlagsMutuallyExclusive("lat", "query", "nmea", "gps")
	cmd.MarkFlagsMutuallyExclusive("lng", "query", "nmea", "gps")
	cmd.MarkFlagsMutuallyExclusive("radius", "unbounded")

	return cmd
}

func (o options) validate(cmd *cobra.Command) error {
	f := cmd.Flags()
	if !f.Changed("lat") && o.query == "" && o.nmeaPath == "" && !o.gps {
		return errors.New("a reference is required: --lat/--lng, --query, --nmea or --gps")
	}
	if o.limit < 0 {
		return fmt.Errorf("--limit must be zero or positive, got %d", o.limit)
	}
	if !o.unbounded && !(o.radius > 0) {
		return fmt.Errorf("--radius must be positive, got %v", o.radius)
	}
	if o.minCapacity < 0 {
		return fmt.Errorf("--min-capacity must be zero or positive, got %d", o.minCapacity)
	}
	return nil
}

func (o options) filters() services.SearchFilters {
	radius := o.radius
	if o.unbounded {
		radius = services.NoMaxDistance
	}
	return services.SearchFilters{
		MaxDistanceMeters: radius,
		FacilityTypes:     o.types,
		MinCapacity:       o.minCapacity,
	}
}

func run(ctx context.Context, a *app, o options) (result, error) {
	switch {
	case o.query != "":
		if !a.finder.SearchAvailable() {
			return result{}, fmt.Errorf("--query needs SEARCH_PROVIDER with credentials: %w", services.ErrSearchUnavailable)
		}
		found, err := a.finder.NearbyPlace(ctx, o.query, o.limit, o.filters())
		if err != nil {
			return result{}, err
		}
		return newResult(found.Place.Coordinate, &found.Place, found.Shelters), nil

	case o.nmeaPath != "" || o.gps:
		var source ports.PositionSource
		if o.nmeaPath != "" {
			source = position.NewNMEAFileSource(o.nmeaPath, a.logger)
		} else {
			if a.cfg.GPSPort == "" {
				return result{}, errors.New("--gps needs GPS_PORT to be set")
			}
			source = position.NewSerialNMEASource(a.cfg.GPSPort, a.cfg.GPSBaud, a.logger)
		}

		here, ranked, err := a.finder.NearbyPosition(ctx, source, o.limit, o.filters())
		if err != nil {
			return result{}, err
		}
		return newResult(here, nil, ranked), nil

	default:
		ref := domain.Coordinate{Latitude: o.lat, Longitude: o.lng}
		ranked, err := a.finder.Nearby(ctx, services.NearbyRequest{
			Reference: ref,
			Limit:     o.limit,
			Filters:   o.filters(),
		})
		if err != nil {
			return result{}, err
		}
		return newResult(ref, nil, ranked), nil
	}
}
