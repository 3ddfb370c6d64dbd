// Package shopify defines the public types of the Shopify admin API client:
// configuration, the resource and file upload client interfaces, raw item
// payloads, query parameters and the error taxonomy.
//
// Clients are created with github.com/lastseal/micro-shopify/pkg/shopifyclient:
//
//	client, err := shopifyclient.New(ctx, &shopify.Config{
//		ShopName:   "my-shop",
//		APIVersion: "2024-01",
//		Username:   os.Getenv("SHOPIFY_USER"),
//		Password:   os.Getenv("SHOPIFY_PASS"),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	orders, err := client.Resource("orders").Search(ctx, shopify.Params{"status": "any"})
//
// Every call is synchronous. Single calls are retried with a fixed delay and
// throttled by the X-Shopify-Shop-Api-Call-Limit header; Search follows the
// page_info cursor in the Link header until no next page is offered.
//
// Files().Upload runs the staged upload workflow against the GraphQL admin
// endpoint: stage, transfer to the object store, register, then poll until
// the file is READY or FAILED.
package shopify
