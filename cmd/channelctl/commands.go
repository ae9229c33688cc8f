package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/api/option"

	"github.com/ad-tracker/youtube-channel-analytics-go/internal/config"
	"github.com/ad-tracker/youtube-channel-analytics-go/internal/models"
	"github.com/ad-tracker/youtube-channel-analytics-go/internal/service"
	"github.com/ad-tracker/youtube-channel-analytics-go/internal/youtube"
	"github.com/ad-tracker/youtube-channel-analytics-go/pkg/logger"
)

const commandTimeout = 30 * time.Second

// analyticsService is the part of the analytics service the CLI drives.
type analyticsService interface {
	GetChannelAnalytics(ctx context.Context, channelID string) (*models.ChannelAnalytics, error)
	SearchChannels(ctx context.Context, query string) ([]models.ChannelSearchResult, error)
	CompareChannels(ctx context.Context, channelID, otherID string) (*models.ChannelComparison, error)
	GetVideoComments(ctx context.Context, videoID, order string, maxResults int64) ([]models.Comment, error)
}

type serviceFactory func(ctx context.Context) (analyticsService, error)

// defaultServiceFactory builds a service that talks to the YouTube API
// directly, without the database, cache or event publisher.
func defaultServiceFactory(ctx context.Context) (analyticsService, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	var opts []option.ClientOption
	if cfg.YouTube.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.YouTube.Endpoint))
	}
	client, err := youtube.NewClient(ctx, cfg.YouTube.APIKey, opts...)
	if err != nil {
		return nil, err
	}

	return service.NewAnalyticsService(
		service.Dependencies{YouTube: client},
		service.Options{
			LatestVideoCount: cfg.YouTube.LatestVideoCount,
			SearchResults:    cfg.YouTube.SearchResults,
		},
	), nil
}

func newRootCmd(newService serviceFactory) *cobra.Command {
	var asJSON bool

	root := &cobra.Command{
		Use:           "channelctl",
		Short:         "YouTube channel analytics from the command line",
		Long:          `Search channels, rate them and read video comments using the YouTube Data API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&asJSON, "json", false, "print results as JSON")

	run := func(cmd *cobra.Command, fn func(ctx context.Context, svc analyticsService) (any, formatFunc, error)) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		svc, err := newService(ctx)
		if err != nil {
			return err
		}

		result, text, err := fn(ctx, svc)
		if err != nil {
			return err
		}

		return write(cmd.OutOrStdout(), result, text, asJSON)
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "search [QUERY]",
			Short: "Search for channels",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd, func(ctx context.Context, svc analyticsService) (any, formatFunc, error) {
					results, err := svc.SearchChannels(ctx, args[0])
					if err != nil {
						return nil, nil, fmt.Errorf("failed to search channels: %w", err)
					}
					return results, func(w io.Writer) { formatSearchResults(w, results) }, nil
				})
			},
		},
		&cobra.Command{
			Use:   "rate [CHANNEL_ID]",
			Short: "Compute metrics and the grade for a channel",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd, func(ctx context.Context, svc analyticsService) (any, formatFunc, error) {
					analytics, err := svc.GetChannelAnalytics(ctx, args[0])
					if err != nil {
						return nil, nil, fmt.Errorf("failed to rate channel: %w", err)
					}
					return analytics, func(w io.Writer) { formatAnalytics(w, analytics) }, nil
				})
			},
		},
		&cobra.Command{
			Use:   "compare [CHANNEL_ID] [OTHER_CHANNEL_ID]",
			Short: "Rate two channels side by side",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd, func(ctx context.Context, svc analyticsService) (any, formatFunc, error) {
					comparison, err := svc.CompareChannels(ctx, args[0], args[1])
					if err != nil {
						return nil, nil, fmt.Errorf("failed to compare channels: %w", err)
					}
					return comparison, func(w io.Writer) { formatComparison(w, comparison) }, nil
				})
			},
		},
		newCommentsCmd(run),
	)

	return root
}

type runFunc func(cmd *cobra.Command, fn func(ctx context.Context, svc analyticsService) (any, formatFunc, error)) error

func newCommentsCmd(run runFunc) *cobra.Command {
	var (
		order      string
		maxResults int64
	)

	cmd := &cobra.Command{
		Use:   "comments [VIDEO_ID]",
		Short: "List top-level comments on a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, svc analyticsService) (any, formatFunc, error) {
				comments, err := svc.GetVideoComments(ctx, args[0], order, maxResults)
				if err != nil {
					return nil, nil, fmt.Errorf("failed to fetch comments: %w", err)
				}
				return comments, func(w io.Writer) { formatComments(w, comments) }, nil
			})
		},
	}
	cmd.Flags().StringVar(&order, "order", "relevance", "comment order: relevance or time")
	cmd.Flags().Int64Var(&maxResults, "max", youtube.DefaultCommentResults, "maximum number of comments")

	return cmd
}

func write(w io.Writer, result any, text formatFunc, asJSON bool) error {
	if !asJSON {
		text(w)
		return nil
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
