package warehouse

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

// TableInfo is a summary of one warehouse table.
type TableInfo struct {
	Name     string
	NumRows  uint64
	NumBytes int64
	Created  time.Time
	Modified time.Time
}

// ListTables returns summaries of every table in the dataset, in iteration
// order.
func (l *Loader) ListTables(ctx context.Context, project, dataset string) ([]TableInfo, error) {
	ds := l.client.DatasetInProject(project, dataset)

	var out []TableInfo
	it := ds.Tables(ctx)
	for {
		tbl, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListTables: iterating %s.%s: %w", project, dataset, err)
		}
		meta, err := tbl.Metadata(ctx)
		if err != nil {
			return nil, fmt.Errorf("ListTables: reading metadata of %s: %w", tbl.TableID, err)
		}
		out = append(out, TableInfo{
			Name:     tbl.TableID,
			NumRows:  meta.NumRows,
			NumBytes: meta.NumBytes,
			Created:  meta.CreationTime,
			Modified: meta.LastModifiedTime,
		})
	}
	return out, nil
}

// DescribeTable returns the summary and schema of one table.
func (l *Loader) DescribeTable(ctx context.Context, tableRef string) (*TableInfo, bigquery.Schema, error) {
	id, err := ParseTableID(tableRef)
	if err != nil {
		return nil, nil, err
	}
	meta, err := l.client.DatasetInProject(id.Project, id.Dataset).Table(id.Table).Metadata(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("DescribeTable: %s: %w", id, err)
	}
	return &TableInfo{
		Name:     id.Table,
		NumRows:  meta.NumRows,
		NumBytes: meta.NumBytes,
		Created:  meta.CreationTime,
		Modified: meta.LastModifiedTime,
	}, meta.Schema, nil
}
