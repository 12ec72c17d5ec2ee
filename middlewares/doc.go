// Package middlewares provides net/http middleware for the jobq HTTP API.
//
// Every middleware has the func(http.Handler) http.Handler shape, so it
// plugs into chi or any other router:
//
//	r := chi.NewRouter()
//	r.Use(
//	    middlewares.RequestID(),
//	    middlewares.RequestLogger(log),
//	    middlewares.Recover(log),
//	    middlewares.BodyLimit(middlewares.DefaultBodyLimit),
//	    middlewares.Timeout(10*time.Second),
//	)
//
// Pair RequestID with RequestIDExtractor so handler logs carry the ID:
//
//	log := logger.New(logger.WithExtractors(middlewares.RequestIDExtractor()))
package middlewares
