package warehouse

import "cloud.google.com/go/bigquery"

// schemaRegistry holds the curated schemas of known tables. A registry
// entry always wins over inference and auto-detection, so the warehouse
// columns stay typed the same way across runs.
var schemaRegistry = map[string]bigquery.Schema{
	"warehouse_movements": {
		{Name: "movement_date", Type: bigquery.DateFieldType},
		{Name: "warehouse_origin", Type: bigquery.StringFieldType},
		{Name: "warehouse_destination", Type: bigquery.StringFieldType},
		{Name: "item_id", Type: bigquery.IntegerFieldType},
		{Name: "item_name", Type: bigquery.StringFieldType},
		{Name: "quantity", Type: bigquery.IntegerFieldType},
	},
	"inventory": {
		{Name: "item_id", Type: bigquery.IntegerFieldType},
		{Name: "item_name", Type: bigquery.StringFieldType},
		{Name: "warehouse", Type: bigquery.StringFieldType},
		{Name: "quantity", Type: bigquery.IntegerFieldType},
		{Name: "last_updated", Type: bigquery.TimestampFieldType},
	},
	"sales": {
		{Name: "sale_date", Type: bigquery.DateFieldType},
		{Name: "item_id", Type: bigquery.IntegerFieldType},
		{Name: "item_name", Type: bigquery.StringFieldType},
		{Name: "quantity", Type: bigquery.IntegerFieldType},
		{Name: "unit_price", Type: bigquery.FloatFieldType},
		{Name: "total_amount", Type: bigquery.FloatFieldType},
	},
	"purchases": {
		{Name: "purchase_date", Type: bigquery.DateFieldType},
		{Name: "item_id", Type: bigquery.IntegerFieldType},
		{Name: "item_name", Type: bigquery.StringFieldType},
		{Name: "quantity", Type: bigquery.IntegerFieldType},
		{Name: "unit_cost", Type: bigquery.FloatFieldType},
		{Name: "total_cost", Type: bigquery.FloatFieldType},
		{Name: "supplier", Type: bigquery.StringFieldType},
	},
}

// RegistrySchema returns the curated schema for table, if one exists.
func RegistrySchema(table string) (bigquery.Schema, bool) {
	s, ok := schemaRegistry[table]
	return s, ok
}
