package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lastseal/micro-shopify/pkg/shopify"
)

func TestResourceClient_Count(t *testing.T) {
	t.Parallel()

	t.Run("returns the count field", func(t *testing.T) {
		t.Parallel()

		c, _ := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/orders/count.json", request.URL.Path)
			assert.Equal(t, "any", request.URL.Query().Get("status"))

			user, pass, ok := request.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "key", user)
			assert.Equal(t, "secret", pass)

			_, _ = writer.Write([]byte(`{"count": 42}`))
		})

		count, err := c.Resource("orders").Count(context.Background(), shopify.Params{"status": "any"})
		require.NoError(t, err)
		assert.Equal(t, 42, count)
	})

	t.Run("truncated body is retried", func(t *testing.T) {
		t.Parallel()

		log := &requestLog{}
		c, _ := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			if log.add(request) == 1 {
				_, _ = writer.Write([]byte(`{"count": 4`))

				return
			}

			_, _ = writer.Write([]byte(`{"count": 42}`))
		})

		count, err := c.Resource("orders").Count(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, 42, count)
		assert.Equal(t, 2, log.count())
	})

	// a well-formed body without the expected member is a payload shape
	// error and propagates immediately
	t.Run("missing count is not retried", func(t *testing.T) {
		t.Parallel()

		log := &requestLog{}
		c, _ := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			log.add(request)
			_, _ = writer.Write([]byte(`{"total": 42}`))
		})

		_, err := c.Resource("orders").Count(context.Background(), nil)
		require.ErrorIs(t, err, shopify.ErrMissingField)
		assert.Equal(t, 1, log.count())
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestResourceClient_Search(t *testing.T) {
	t.Parallel()

	t.Run("follows the next cursor", func(t *testing.T) {
		t.Parallel()

		log := &requestLog{}

		c, _ := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			log.add(request)
			serverURL := "http://" + request.Host
			assert.Equal(t, "/orders.json", request.URL.Path)

			switch request.URL.Query().Get("page_info") {
			case "":
				writer.Header().Set("Link", fmt.Sprintf(`<%s/orders.json?limit=2&page_info=c1>; rel="next"`, serverURL))
				_, _ = writer.Write([]byte(`{"orders":[{"id":1},{"id":2}]}`))
			case "c1":
				writer.Header().Set("Link", fmt.Sprintf(
					`<%s/orders.json?limit=2&page_info=p2>; rel="previous", <%s/orders.json?limit=2&page_info=c2>; rel="next"`,
					serverURL, serverURL))
				_, _ = writer.Write([]byte(`{"orders":[{"id":3},{"id":4}]}`))
			default:
				writer.Header().Set("Link", fmt.Sprintf(`<%s/orders.json?limit=2&page_info=p3>; rel="previous"`, serverURL))
				_, _ = writer.Write([]byte(`{"orders":[{"id":5}]}`))
			}
		})

		items, err := c.Resource("orders").Search(context.Background(), shopify.Params{
			"status":         "any",
			"created_at_min": "2024-01-01",
			"limit":          2,
		})
		require.NoError(t, err)

		require.Len(t, items, 5)

		for i, item := range items {
			assert.Equal(t, fmt.Sprint(i+1), item.ID())
		}

		require.Equal(t, 3, log.count())

		first := log.get(0).URL.Query()
		assert.Equal(t, "any", first.Get("status"))
		assert.Equal(t, "2", first.Get("limit"))

		for i, cursor := range []string{"c1", "c2"} {
			query := log.get(i + 1).URL.Query()
			assert.Len(t, query, 2)
			assert.Equal(t, "2", query.Get("limit"))
			assert.Equal(t, cursor, query.Get("page_info"))
		}
	})

	t.Run("default page size", func(t *testing.T) {
		t.Parallel()

		c, _ := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "250", request.URL.Query().Get("limit"))
			_, _ = writer.Write([]byte(`{"products":[{"id":1}]}`))
		})

		items, err := c.Resource("products").Search(context.Background(), nil)
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("empty page", func(t *testing.T) {
		t.Parallel()

		c, _ := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			_, _ = writer.Write([]byte(`{"orders":[]}`))
		})

		items, err := c.Resource("orders").Search(context.Background(), nil)
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	t.Run("page failure is retried", func(t *testing.T) {
		t.Parallel()

		log := &requestLog{}
		c, _ := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			if log.add(request) == 1 {
				writer.WriteHeader(http.StatusBadGateway)

				return
			}

			_, _ = writer.Write([]byte(`{"orders":[{"id":1}]}`))
		})

		items, err := c.Resource("orders").Search(context.Background(), nil)
		require.NoError(t, err)
		assert.Len(t, items, 1)
		assert.Equal(t, 2, log.count())
	})

	t.Run("each stops on callback error", func(t *testing.T) {
		t.Parallel()

		stop := errors.New("stop")
		c, _ := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			_, _ = writer.Write([]byte(`{"orders":[{"id":1},{"id":2}]}`))
		})

		seen := 0
		err := c.Resource("orders").Each(context.Background(), nil, func(shopify.Item) error {
			seen++

			return stop
		})
		require.ErrorIs(t, err, stop)
		assert.Equal(t, 1, seen)
	})
}

func TestResourceClient_Get(t *testing.T) {
	t.Parallel()

	t.Run("unwraps the singular key", func(t *testing.T) {
		t.Parallel()

		c, _ := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/orders/450789469.json", request.URL.Path)
			_, _ = writer.Write([]byte(`{"order":{"id":450789469123456789,"name":"#1001"}}`))
		})

		item, err := c.Resource("orders").Get(context.Background(), "450789469")
		require.NoError(t, err)
		assert.Equal(t, "450789469123456789", item.ID())
		assert.Equal(t, json.Number("450789469123456789"), item["id"])
		assert.Equal(t, "#1001", item["name"])
	})

	t.Run("not found after retries", func(t *testing.T) {
		t.Parallel()

		log := &requestLog{}
		logger := &MockLogger{}
		c, _ := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			log.add(request)
			writer.WriteHeader(http.StatusNotFound)
			_, _ = writer.Write([]byte(`{"errors":"Not Found"}`))
		}, func(config *shopify.Config) {
			config.Logger = logger
		})

		item, err := c.Resource("orders").Get(context.Background(), "123")
		require.Error(t, err)
		assert.Nil(t, item)
		assert.True(t, shopify.IsNotFound(err))
		assert.Contains(t, err.Error(), `404 - {"errors":"Not Found"}`)
		assert.Equal(t, 4, log.count())
		assert.Len(t, logger.messages("warn"), 3)
	})

	t.Run("client errors are not retried with the transient filter", func(t *testing.T) {
		t.Parallel()

		log := &requestLog{}
		c, _ := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			log.add(request)
			writer.WriteHeader(http.StatusNotFound)
		}, func(config *shopify.Config) {
			config.Retryable = shopify.RetryTransient
		})

		_, err := c.Resource("orders").Get(context.Background(), "123")
		require.Error(t, err)
		assert.Equal(t, 1, log.count())
	})

	t.Run("undecodable body is retried", func(t *testing.T) {
		t.Parallel()

		log := &requestLog{}
		c, _ := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			if log.add(request) == 1 {
				_, _ = writer.Write([]byte(`<html>gateway hiccup</html>`))

				return
			}

			_, _ = writer.Write([]byte(`{"order":{"id":1}}`))
		})

		order, err := c.Resource("orders").Get(context.Background(), "1")
		require.NoError(t, err)
		assert.Equal(t, "1", order.ID())
		assert.Equal(t, 2, log.count())
	})

	t.Run("undecodable body exhausts retries", func(t *testing.T) {
		t.Parallel()

		log := &requestLog{}
		c, _ := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			log.add(request)
			_, _ = writer.Write([]byte(`<html>maintenance</html>`))
		})

		_, err := c.Resource("orders").Get(context.Background(), "1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing response")
		assert.Equal(t, 4, log.count())
	})

	t.Run("empty id", func(t *testing.T) {
		t.Parallel()

		c, _ := newTestClient(t, func(http.ResponseWriter, *http.Request) {
			t.Error("no request expected")
		})

		_, err := c.Resource("orders").Get(context.Background(), "")
		require.ErrorIs(t, err, shopify.ErrIDRequired)
	})
}

func TestResourceClient_Write(t *testing.T) {
	t.Parallel()

	t.Run("put wraps the body", func(t *testing.T) {
		t.Parallel()

		c, _ := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "PUT", request.Method)
			assert.Equal(t, "/products/7.json", request.URL.Path)

			var body map[string]map[string]interface{}

			assert.NoError(t, json.NewDecoder(request.Body).Decode(&body))
			assert.Equal(t, "Shirt", body["product"]["title"])

			_, _ = writer.Write([]byte(`{"product":{"id":7,"title":"Shirt"}}`))
		})

		item, err := c.Resource("products").Put(context.Background(), "7", shopify.Item{"title": "Shirt"})
		require.NoError(t, err)
		assert.Equal(t, "7", item.ID())
	})

	t.Run("post uses configured singular key", func(t *testing.T) {
		t.Parallel()

		c, _ := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "POST", request.Method)
			assert.Equal(t, "/customers/9/addresses.json", request.URL.Path)

			var body map[string]map[string]interface{}

			assert.NoError(t, json.NewDecoder(request.Body).Decode(&body))
			assert.Equal(t, "Main St", body["address"]["address1"])

			writer.WriteHeader(http.StatusCreated)
			_, _ = writer.Write([]byte(`{"address":{"id":11}}`))
		}, func(config *shopify.Config) {
			config.SingularKeys = map[string]string{"customers/9/addresses": "address"}
		})

		item, err := c.Resource("customers/9/addresses").Post(context.Background(), shopify.Item{"address1": "Main St"})
		require.NoError(t, err)
		assert.Equal(t, "11", item.ID())
	})

	t.Run("post creates", func(t *testing.T) {
		t.Parallel()

		c, _ := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/webhooks.json", request.URL.Path)
			writer.WriteHeader(http.StatusCreated)
			_, _ = writer.Write([]byte(`{"webhook":{"id":5,"topic":"orders/create"}}`))
		})

		item, err := c.Resource("webhooks").Post(context.Background(), shopify.Item{"topic": "orders/create"})
		require.NoError(t, err)
		assert.Equal(t, "5", item.ID())
	})

	t.Run("missing envelope is not retried", func(t *testing.T) {
		t.Parallel()

		log := &requestLog{}
		c, _ := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			log.add(request)
			_, _ = writer.Write([]byte(`{"customer_address":{"id":11}}`))
		})

		_, err := c.Resource("customers/9/addresses").Post(context.Background(), shopify.Item{"address1": "Main St"})
		require.ErrorIs(t, err, shopify.ErrMissingField)
		assert.Equal(t, 1, log.count())
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()

		c, _ := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "DELETE", request.Method)
			assert.Equal(t, "/webhooks/5.json", request.URL.Path)
			_, _ = writer.Write([]byte(`{}`))
		})

		require.NoError(t, c.Resource("webhooks").Delete(context.Background(), "5"))
	})

	t.Run("validation failure is retried by default", func(t *testing.T) {
		t.Parallel()

		log := &requestLog{}
		c, _ := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			log.add(request)
			writer.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = writer.Write([]byte(`{"errors":{"title":["can't be blank"]}}`))
		})

		_, err := c.Resource("products").Post(context.Background(), shopify.Item{})
		require.Error(t, err)
		assert.Equal(t, 422, shopify.StatusCode(err))
		assert.Equal(t, 4, log.count())
	})
}

func TestResourceClient_CallBudget(t *testing.T) {
	t.Parallel()

	logger := &MockLogger{}
	c, _ := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("X-Shopify-Shop-Api-Call-Limit", "39/40")
		_, _ = writer.Write([]byte(`{"count": 1}`))
	}, func(config *shopify.Config) {
		config.Logger = logger
	})

	_, err := c.Resource("orders").Count(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Call budget low, cooling down"}, logger.messages("warn"))
}

func TestResourceClient_CallBudgetDisabled(t *testing.T) {
	t.Parallel()

	logger := &MockLogger{}
	c, _ := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("X-Shopify-Shop-Api-Call-Limit", "40/40")
		_, _ = writer.Write([]byte(`{"count": 1}`))
	}, func(config *shopify.Config) {
		config.Logger = logger
		config.CallLimitThreshold = -1
	})

	_, err := c.Resource("orders").Count(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, logger.messages("warn"))
}

func TestResourceClient_AccessToken(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "shpat_abc", request.Header.Get("X-Shopify-Access-Token"))
		_, _, ok := request.BasicAuth()
		assert.False(t, ok)
		_, _ = writer.Write([]byte(`{"count": 0}`))
	}, func(config *shopify.Config) {
		config.AccessToken = "shpat_abc"
	})

	count, err := c.Resource("orders").Count(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}
