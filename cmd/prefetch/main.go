// Command prefetch reports every signature in a collection that shares at
// least a threshold of content with a query signature.
//
//	prefetch query.sig db/ s3://bucket/genomes/ -k 31 -o matches.csv
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
