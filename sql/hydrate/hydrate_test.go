package hydrate

import (
	"testing"

	"github.com/gosqlmapper/sqlmapper/configuration"
	"github.com/gosqlmapper/sqlmapper/sql/types"
	"github.com/stretchr/testify/require"
)

type Order struct {
	Id    int64
	Name  string
	Items []Item
}

type Item struct {
	Id   int64
	Name string
}

func TestScalarHydration(t *testing.T) {
	row := Row{"count": int64(4)}
	v, err := Scalar(row, []string{"count"}, "", types.NewRegistry())
	require.NoError(t, err)
	require.Equal(t, int64(4), v)
}

func TestArrayHydrationAutoMapsColumns(t *testing.T) {
	row := Row{"order_id": int64(1), "order_name": "first"}
	m := Array(row, nil, true, types.NewRegistry())
	require.Equal(t, int64(1), m["orderId"])
	require.Equal(t, "first", m["orderName"])
}

func TestObjectHydrationFallsBackToMapWithoutRegisteredType(t *testing.T) {
	row := Row{"id": int64(1), "name": "first"}
	v, err := Object(row, nil, "Unregistered", false, types.NewRegistry(), NewRegistry())
	require.NoError(t, err)
	m, ok := v.(map[string]any)
	require.True(t, ok)
	require.Equal(t, int64(1), m["Id"])
}

func TestObjectHydrationIntoRegisteredGoType(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterGoType("Order", &Order{})
	row := Row{"id": int64(1), "name": "first"}
	v, err := Object(row, nil, "Order", false, types.NewRegistry(), reg)
	require.NoError(t, err)
	order, ok := v.(*Order)
	require.True(t, ok)
	require.Equal(t, int64(1), order.Id)
	require.Equal(t, "first", order.Name)
}

func TestRowsGroupsCollectionByParentIdentity(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterGoType("Order", &Order{})
	reg.RegisterGoType("Item", &Item{})

	rm := &configuration.ResultMap{
		TypeName: "Order",
		IDMappings: []configuration.ResultMapping{
			{Property: "Id", Column: "id"},
		},
		ResultMappings: []configuration.ResultMapping{
			{Property: "Name", Column: "name"},
		},
		Collections: []configuration.Collection{
			{
				Property:     "Items",
				ItemTypeName: "Item",
				ColumnPrefix: "item_",
				IDMappings: []configuration.ResultMapping{
					{Property: "Id", Column: "id"},
				},
				ResultMappings: []configuration.ResultMapping{
					{Property: "Name", Column: "name"},
				},
			},
		},
	}

	rows := []Row{
		{"id": int64(1), "name": "first", "item_id": int64(10), "item_name": "widget"},
		{"id": int64(1), "name": "first", "item_id": int64(11), "item_name": "gadget"},
		{"id": int64(2), "name": "second", "item_id": int64(12), "item_name": "gizmo"},
	}

	out, err := Rows(rows, Options{
		Mode:         configuration.HydrationObject,
		ResultMap:    rm,
		TypeHandlers: types.NewRegistry(),
		Adapters:     reg,
	})
	require.NoError(t, err)
	require.Len(t, out, 2)

	first := out[0].(*Order)
	require.Equal(t, int64(1), first.Id)
	require.Len(t, first.Items, 2)
	require.Equal(t, "widget", first.Items[0].Name)
	require.Equal(t, "gadget", first.Items[1].Name)

	second := out[1].(*Order)
	require.Equal(t, int64(2), second.Id)
	require.Len(t, second.Items, 1)
}
