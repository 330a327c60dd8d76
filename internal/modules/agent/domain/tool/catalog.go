package tool

import (
	"github.com/cloudwego/eino/schema"
)

// Definition 商城管理工具定义，Mutating 为 true 的工具必须经人工审批后才能执行
type Definition struct {
	Name        string
	Domain      string
	Description string
	Mutating    bool
	Info        *schema.ToolInfo
}

// Domain 业务域及其描述，用于路由失败时的全量候选提示
type Domain struct {
	Name        string
	Description string
}

// Domains 商城后台的业务域列表
var Domains = []Domain{
	{Name: "analytics", Description: "销售与流量分析、概览报表"},
	{Name: "orders", Description: "订单查询、取消、备注"},
	{Name: "customers", Description: "客户档案与消费记录"},
	{Name: "products", Description: "商品信息与上下架状态"},
	{Name: "inventory", Description: "库存水位与盘点调整"},
	{Name: "collections", Description: "商品集合与分类"},
	{Name: "discounts", Description: "折扣码与促销活动"},
	{Name: "gift_cards", Description: "礼品卡发放与余额"},
	{Name: "fulfillment", Description: "发货与物流履约"},
	{Name: "finance", Description: "退款、账单与结算"},
	{Name: "order_editing", Description: "订单内容修改"},
}

var catalog = []*Definition{
	{
		Name:        "get_orders",
		Domain:      "orders",
		Description: "查询订单列表，可按状态、客户邮箱过滤",
		Info: &schema.ToolInfo{
			Name: "get_orders",
			Desc: "查询订单列表，可按状态、客户邮箱过滤",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"status":         {Type: schema.String, Desc: "订单状态过滤，如 open/fulfilled/cancelled"},
				"customer_email": {Type: schema.String, Desc: "按客户邮箱过滤"},
				"limit":          {Type: schema.Integer, Desc: "返回条数上限，默认 20"},
			}),
		},
	},
	{
		Name:        "get_products",
		Domain:      "products",
		Description: "查询商品，可按关键词、上架状态过滤",
		Info: &schema.ToolInfo{
			Name: "get_products",
			Desc: "查询商品，可按关键词、上架状态过滤",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query":  {Type: schema.String, Desc: "商品名称或描述关键词"},
				"status": {Type: schema.String, Desc: "上架状态，如 active/draft/archived"},
				"limit":  {Type: schema.Integer, Desc: "返回条数上限，默认 20"},
			}),
		},
	},
	{
		Name:        "get_customers",
		Domain:      "customers",
		Description: "查询客户档案，可按邮箱或关键词检索",
		Info: &schema.ToolInfo{
			Name: "get_customers",
			Desc: "查询客户档案，可按邮箱或关键词检索",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"email": {Type: schema.String, Desc: "客户邮箱精确匹配"},
				"query": {Type: schema.String, Desc: "姓名或邮箱关键词"},
				"limit": {Type: schema.Integer, Desc: "返回条数上限，默认 20"},
			}),
		},
	},
	{
		Name:        "get_inventory",
		Domain:      "inventory",
		Description: "查询库存水位，可按 SKU 或低库存过滤",
		Info: &schema.ToolInfo{
			Name: "get_inventory",
			Desc: "查询库存水位，可按 SKU 或低库存过滤",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"sku":       {Type: schema.String, Desc: "按 SKU 精确查询"},
				"low_stock": {Type: schema.Boolean, Desc: "仅返回低库存商品"},
				"limit":     {Type: schema.Integer, Desc: "返回条数上限，默认 20"},
			}),
		},
	},
	{
		Name:        "get_analytics_summary",
		Domain:      "analytics",
		Description: "查询销售概览报表（GMV、订单数、转化率）",
		Info: &schema.ToolInfo{
			Name: "get_analytics_summary",
			Desc: "查询销售概览报表（GMV、订单数、转化率）",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"period": {Type: schema.String, Desc: "统计周期，如 today/7d/30d，默认 7d"},
			}),
		},
	},
	{
		Name:        "issue_refund",
		Domain:      "finance",
		Description: "为指定订单发起退款",
		Mutating:    true,
		Info: &schema.ToolInfo{
			Name: "issue_refund",
			Desc: "为指定订单发起退款，需人工审批",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"order_id": {Type: schema.String, Desc: "订单 ID", Required: true},
				"amount":   {Type: schema.Number, Desc: "退款金额", Required: true},
				"reason":   {Type: schema.String, Desc: "退款原因"},
			}),
		},
	},
	{
		Name:        "cancel_order",
		Domain:      "orders",
		Description: "取消指定订单",
		Mutating:    true,
		Info: &schema.ToolInfo{
			Name: "cancel_order",
			Desc: "取消指定订单，需人工审批",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"order_id": {Type: schema.String, Desc: "订单 ID", Required: true},
				"reason":   {Type: schema.String, Desc: "取消原因"},
			}),
		},
	},
	{
		Name:        "update_inventory",
		Domain:      "inventory",
		Description: "调整指定 SKU 的库存数量",
		Mutating:    true,
		Info: &schema.ToolInfo{
			Name: "update_inventory",
			Desc: "调整指定 SKU 的库存数量，需人工审批",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"sku":      {Type: schema.String, Desc: "商品 SKU", Required: true},
				"quantity": {Type: schema.Integer, Desc: "调整后的库存数量", Required: true},
				"reason":   {Type: schema.String, Desc: "调整原因"},
			}),
		},
	},
	{
		Name:        "create_discount",
		Domain:      "discounts",
		Description: "创建折扣码",
		Mutating:    true,
		Info: &schema.ToolInfo{
			Name: "create_discount",
			Desc: "创建折扣码，需人工审批",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"code":       {Type: schema.String, Desc: "折扣码", Required: true},
				"percentage": {Type: schema.Number, Desc: "折扣百分比（0-100）", Required: true},
				"expires_at": {Type: schema.String, Desc: "过期时间，RFC3339 格式"},
			}),
		},
	},
	{
		Name:        "add_order_note",
		Domain:      "order_editing",
		Description: "为订单追加内部备注",
		Mutating:    true,
		Info: &schema.ToolInfo{
			Name: "add_order_note",
			Desc: "为订单追加内部备注，需人工审批",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"order_id": {Type: schema.String, Desc: "订单 ID", Required: true},
				"note":     {Type: schema.String, Desc: "备注内容", Required: true},
			}),
		},
	},
}

var byName = func() map[string]*Definition {
	m := make(map[string]*Definition, len(catalog))
	for _, d := range catalog {
		m[d.Name] = d
	}
	return m
}()

// Get 按名称获取工具定义，不存在返回 nil
func Get(name string) *Definition {
	return byName[name]
}

// All 全量工具定义
func All() []*Definition {
	return catalog
}

// KnownDomain 是否为已登记的业务域
func KnownDomain(name string) bool {
	for _, d := range Domains {
		if d.Name == name {
			return true
		}
	}
	return false
}

// IsMutating 工具是否为变更类（需要审批）
func IsMutating(name string) bool {
	d := byName[name]
	return d != nil && d.Mutating
}

// Infos 指定工具名的 ToolInfo 列表，未知名称被忽略
func Infos(names ...string) []*schema.ToolInfo {
	var infos []*schema.ToolInfo
	for _, n := range names {
		if d := byName[n]; d != nil {
			infos = append(infos, d.Info)
		}
	}
	return infos
}

// AllInfos 全量 ToolInfo，用于路由无果时回落到完整候选集
func AllInfos() []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(catalog))
	for _, d := range catalog {
		infos = append(infos, d.Info)
	}
	return infos
}
