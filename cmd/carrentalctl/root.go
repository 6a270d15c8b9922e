package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	jwtSecret string
	jwtTTL    time.Duration
	mongoURI  string
	mongoDB   string
	verbose   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "carrentalctl",
		Short:         "Operator tool for the car rental service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.jwtSecret, "jwt-secret", os.Getenv("CARRENTAL_JWT_SECRET"), "HMAC secret for bearer tokens (env CARRENTAL_JWT_SECRET)")
	f.DurationVar(&opts.jwtTTL, "jwt-ttl", 24*time.Hour, "bearer token lifetime")
	f.StringVar(&opts.mongoURI, "mongo-uri", envOr("CARRENTAL_MONGO_URI", "mongodb://localhost:27017"), "MongoDB connection URI")
	f.StringVar(&opts.mongoDB, "mongo-database", envOr("CARRENTAL_MONGO_DATABASE", "carrental"), "MongoDB database name")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")

	cmd.AddCommand(
		newHashPasswordCmd(),
		newIssueTokenCmd(opts),
		newCreateUserCmd(opts),
		newSetPasswordCmd(opts),
	)
	return cmd
}

func (o *rootOptions) logger() *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
