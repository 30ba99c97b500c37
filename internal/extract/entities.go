package extract

// Entity describes one extractable dataset: its API endpoint, fixed query
// parameters, output artifact name, warehouse table, and field mapping.
type Entity struct {
	Name     string
	Endpoint string
	// Params are query parameters sent with every page request, on top of
	// the pagination window.
	Params   map[string]string
	FileName string
	Table    string
	Mapper   *RecordMapper
}

// Entities returns the registry of extractable entities in batch order.
func Entities() []Entity {
	return []Entity{
		{
			Name:     "movements",
			Endpoint: "/warehouse-transfers",
			FileName: "warehouse_movements.csv",
			Table:    "warehouse_movements",
			Mapper: NewMapper(
				[]Field{
					{Column: "movement_date", Extract: Key("date")},
					{Column: "warehouse_origin", Extract: Key("origin", "name")},
					{Column: "warehouse_destination", Extract: Key("destination", "name")},
				},
				[][]string{{"items"}},
				[]Field{
					{Column: "item_id", Extract: Key("id")},
					{Column: "item_name", Extract: Key("name")},
					{Column: "quantity", Extract: Key("quantity")},
				},
			),
		},
		{
			Name:     "inventory",
			Endpoint: "/items",
			FileName: "items_inventory.csv",
			Table:    "inventory",
			Mapper: NewFlatMapper([]Field{
				{Column: "id", Extract: Key("id")},
				{Column: "name", Extract: Key("name")},
				{Column: "initial_quantity", Extract: Key("inventory", "initialQuantity")},
				{Column: "initial_quantity_date", Extract: Key("inventory", "initialQuantityDate")},
				{Column: "final_available_quantity", Extract: Key("inventory", "availableQuantity")},
				{Column: "photo_url", Extract: FirstElemKey("images", "url")},
			}),
		},
		{
			Name:     "sales",
			Endpoint: "/invoices",
			FileName: "factura_items.csv",
			Table:    "sales",
			Mapper: NewMapper(
				[]Field{
					{Column: "factura_id", Extract: Key("id")},
					{Column: "fecha_venta", Extract: Key("date")},
					{Column: "warehouse_name", Extract: Key("warehouse", "name")},
				},
				[][]string{{"items"}},
				[]Field{
					{Column: "item_id", Extract: Key("id")},
					{Column: "item_name", Extract: Key("name")},
					{Column: "item_quantity", Extract: Key("quantity")},
				},
			),
		},
		{
			Name:     "purchases",
			Endpoint: "/purchase-orders",
			Params:   map[string]string{"order_direction": "ASC"},
			FileName: "purchase_orders.csv",
			Table:    "purchases",
			Mapper: NewMapper(
				[]Field{
					{Column: "invoice_id", Extract: Key("id")},
					{Column: "added_inventory_date", Extract: Key("deliveryDate")},
					{Column: "provider_id", Extract: Key("id")},
					{Column: "warehouse_name", Extract: Key("warehouse", "name")},
				},
				// Purchase orders nest their lines under purchases.items on
				// newer API responses and under items on older ones.
				[][]string{{"purchases", "items"}, {"items"}},
				[]Field{
					{Column: "price_provider", Extract: Key("price")},
					{Column: "quantity", Extract: Key("quantity")},
					{Column: "item_id", Extract: Key("id")},
					{Column: "item_name", Extract: Key("name")},
				},
			),
		},
	}
}

// EntityByName looks up a registry entry by name.
func EntityByName(name string) (Entity, bool) {
	for _, e := range Entities() {
		if e.Name == name {
			return e, true
		}
	}
	return Entity{}, false
}
