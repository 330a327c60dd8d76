package commerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// ToolExecutor 把工具调用落到商城后端 API
type ToolExecutor interface {
	// Execute 执行工具，入参与返回值都是 JSON 文本
	Execute(ctx context.Context, toolName string, argsJSON string) (string, error)
}

type toolExecutorImpl struct {
	client *Client
}

func NewToolExecutor(client *Client) ToolExecutor {
	return &toolExecutorImpl{client: client}
}

func (e *toolExecutorImpl) Execute(ctx context.Context, toolName string, argsJSON string) (string, error) {
	args := map[string]interface{}{}
	if argsJSON != "" {
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return "", fmt.Errorf("invalid tool arguments: %w", err)
		}
	}

	var (
		raw json.RawMessage
		err error
	)
	switch toolName {
	case "get_orders":
		raw, err = e.client.Get(ctx, "/admin/orders", queryFrom(args, "status", "customer_email", "limit"))
	case "get_products":
		raw, err = e.client.Get(ctx, "/admin/products", queryFrom(args, "query", "status", "limit"))
	case "get_customers":
		raw, err = e.client.Get(ctx, "/admin/customers", queryFrom(args, "email", "query", "limit"))
	case "get_inventory":
		raw, err = e.client.Get(ctx, "/admin/inventory", queryFrom(args, "sku", "low_stock", "limit"))
	case "get_analytics_summary":
		raw, err = e.client.Get(ctx, "/admin/analytics/summary", queryFrom(args, "period"))
	case "issue_refund":
		raw, err = e.client.Post(ctx, "/admin/refunds", args)
	case "cancel_order":
		raw, err = e.client.Post(ctx, fmt.Sprintf("/admin/orders/%v/cancel", args["order_id"]), args)
	case "update_inventory":
		raw, err = e.client.Post(ctx, "/admin/inventory/adjust", args)
	case "create_discount":
		raw, err = e.client.Post(ctx, "/admin/discounts", args)
	case "add_order_note":
		raw, err = e.client.Post(ctx, fmt.Sprintf("/admin/orders/%v/notes", args["order_id"]), args)
	default:
		return "", fmt.Errorf("unknown tool: %s", toolName)
	}
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func queryFrom(args map[string]interface{}, keys ...string) url.Values {
	q := url.Values{}
	for _, k := range keys {
		v, ok := args[k]
		if !ok || v == nil {
			continue
		}
		switch val := v.(type) {
		case string:
			if val != "" {
				q.Set(k, val)
			}
		case float64:
			q.Set(k, strconv.FormatFloat(val, 'f', -1, 64))
		case bool:
			q.Set(k, strconv.FormatBool(val))
		}
	}
	return q
}
