// Package shopifyclient provides the primary entry point for constructing an
// admin API client that implements the shopify.Client interface.
//
// It layers configuration, HTTP transport, authentication, retries and call
// budget back-pressure on top of the interfaces and types defined in the
// shopify package.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/lastseal/micro-shopify/pkg/shopify"
//	  "github.com/lastseal/micro-shopify/pkg/shopifyclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  // Private app credentials (basic auth).
//	  cli, err := shopifyclient.NewWithPassword(ctx, "demo", "2024-01", "key", "secret")
//	  if err != nil { log.Fatal(err) }
//
//	  // Or everything from SHOPIFY_NAME, SHOPIFY_USER, SHOPIFY_PASS, ...
//	  cli, err = shopifyclient.NewFromEnv(ctx)
//
//	  orders, err := cli.Resource("orders").Search(ctx, shopify.Params{"status": "any"})
//	  _ = orders
//	}
//
// # Logging
//
// The default logger discards everything. NewLogrusLogger adapts a logrus
// logger; pass it through Config.Logger and set Config.Debug to log every
// request and response.
package shopifyclient
