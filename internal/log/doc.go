// Package log builds [log/slog] handlers for the player binary.
//
// It supports two output formats ([FormatJSON], [FormatLogfmt]) and the
// four standard severity levels. Use [Config] to wire level/format flags
// onto a [github.com/spf13/cobra] command with shell completion support,
// then call [Config.NewHandler] once flags are parsed:
//
//	cfg := log.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//	cfg.RegisterCompletions(rootCmd)
//
//	handler, err := cfg.NewHandler(os.Stderr)
//	slog.SetDefault(slog.New(handler))
//
// A [Publisher] fans log output out to multiple subscribers, so log lines
// can be buffered and written out later instead of going straight to a
// terminal. The videoplayer command does not use it; its handler writes
// directly to standard error:
//
//	pub := log.NewPublisher()
//	handler := log.NewHandler(pub, log.LevelInfo, log.FormatLogfmt)
//	logger := slog.New(handler)
//
//	sub := pub.Subscribe()
//	go func() {
//	    for entry := range sub.C() {
//	        os.Stderr.Write(entry)
//	    }
//	}()
package log
