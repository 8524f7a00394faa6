package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/shopsched/pkg/domain/entities"
)

const ordersFixture = `id,order_number,parent_order_number,operation,machine,machine_group,product_type,start_hour,duration_hours,status,quantity,deadline,bom_status
1,ORD-1-1,ORD-1,Buigen,BUIG 1,BUIG,TYPE_A,0,4,planned,10,,ok
2,ORD-1-2,ORD-1,Lassen,LAS 1,LAS,TYPE_A,10,4,planned,10,,ok
3,ORD-2-1,ORD-2,Buigen,BUIG 1,BUIG,TYPE_A,8,2,planned,5,,ok
4,ORD-3-1,ORD-3,Buigen,BUIG 2,BUIG,TYPE_B,0,3,locked,5,,ok
`

func writeOrders(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.csv")
	require.NoError(t, os.WriteFile(path, []byte(ordersFixture), 0644))
	return path
}

type jsonReport struct {
	Operation string `json:"operation"`
	Result    struct {
		Orders []*entities.Order `json:"orders"`
		Moved  []string          `json:"moved"`
	} `json:"result"`
}

func runJSON(t *testing.T, config Config) jsonReport {
	t.Helper()
	config.Format = "json"
	config.LogMode = "nop"
	cmd := NewScheduleCommand(config)
	var buf bytes.Buffer
	cmd.SetOutput(&buf)
	require.NoError(t, cmd.Execute(context.Background()))

	var report jsonReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	return report
}

func startOf(t *testing.T, report jsonReport, id string) float64 {
	t.Helper()
	for _, o := range report.Result.Orders {
		if o.ID == id {
			return o.StartHour
		}
	}
	t.Fatalf("order %s not in report", id)
	return 0
}

func TestScheduleCommand_Show(t *testing.T) {
	cmd := NewScheduleCommand(Config{OrdersFile: writeOrders(t), LogMode: "nop"})
	var buf bytes.Buffer
	cmd.SetOutput(&buf)

	require.NoError(t, cmd.Execute(context.Background()))

	out := buf.String()
	assert.Contains(t, out, "Schedule Summary (show)")
	assert.Contains(t, out, "Orders: 4")
	assert.Contains(t, out, "Moved: 0")
	assert.Contains(t, out, "BUIG 1 [BUIG]")
}

func TestScheduleCommand_PurgeFrom(t *testing.T) {
	report := runJSON(t, Config{
		OrdersFile: writeOrders(t),
		Operation:  OpPurgeFrom,
		OrderID:    "1",
	})

	assert.Equal(t, OpPurgeFrom, report.Operation)
	assert.Equal(t, 0.0, startOf(t, report, "1"))
	assert.Equal(t, 4.0, startOf(t, report, "3"))
	assert.Equal(t, []string{"3"}, report.Result.Moved)
}

func TestScheduleCommand_Relocate(t *testing.T) {
	report := runJSON(t, Config{
		OrdersFile: writeOrders(t),
		Operation:  OpRelocate,
		OrderID:    "3",
		Machine:    "LAS 1",
		Start:      2,
	})

	for _, o := range report.Result.Orders {
		if o.ID == "3" {
			assert.Equal(t, "LAS 1", o.Machine)
		}
	}
	assert.Contains(t, report.Result.Moved, "3")
}

func TestScheduleCommand_Status(t *testing.T) {
	report := runJSON(t, Config{
		OrdersFile: writeOrders(t),
		Operation:  OpStatus,
		OrderID:    "3",
		Status:     "parked",
	})

	for _, o := range report.Result.Orders {
		if o.ID == "3" {
			assert.Equal(t, entities.Parked, o.Status)
		}
	}
}

func TestScheduleCommand_Flow(t *testing.T) {
	cmd := NewScheduleCommand(Config{
		OrdersFile: writeOrders(t),
		Operation:  OpFlow,
		Parent:     "ORD-1",
		LogMode:    "nop",
	})
	var buf bytes.Buffer
	cmd.SetOutput(&buf)

	require.NoError(t, cmd.Execute(context.Background()))

	out := buf.String()
	assert.Contains(t, out, "ORD-1-1")
	assert.Contains(t, out, "ORD-1-2")
	assert.NotContains(t, out, "ORD-2-1")
}

func TestScheduleCommand_Filter(t *testing.T) {
	cmd := NewScheduleCommand(Config{
		OrdersFile: writeOrders(t),
		Filter:     "locked",
		LogMode:    "nop",
	})
	var buf bytes.Buffer
	cmd.SetOutput(&buf)

	require.NoError(t, cmd.Execute(context.Background()))

	out := buf.String()
	assert.Contains(t, out, "ORD-3-1")
	assert.NotContains(t, out, "ORD-1-1")
}

func TestScheduleCommand_Errors(t *testing.T) {
	orders := writeOrders(t)
	tests := []struct {
		name   string
		config Config
		errMsg string
	}{
		{
			name:   "missing orders file",
			config: Config{},
			errMsg: "orders file is required",
		},
		{
			name:   "orders file not found",
			config: Config{OrdersFile: filepath.Join(t.TempDir(), "missing.csv")},
			errMsg: "file not found",
		},
		{
			name:   "unknown operation",
			config: Config{OrdersFile: orders, Operation: "explode"},
			errMsg: "unknown operation: explode",
		},
		{
			name:   "relocate without order",
			config: Config{OrdersFile: orders, Operation: OpRelocate, Machine: "LAS 1"},
			errMsg: "-order is required for relocate",
		},
		{
			name:   "locked order cannot be relocated",
			config: Config{OrdersFile: orders, Operation: OpRelocate, OrderID: "4", Machine: "LAS 1"},
			errMsg: "relocate rejected",
		},
		{
			name:   "bad status filter",
			config: Config{OrdersFile: orders, Filter: "bogus"},
			errMsg: "validation error",
		},
		{
			name:   "bad window",
			config: Config{OrdersFile: orders, Operation: OpPurgeWindow, From: 10, To: 5},
			errMsg: entities.ErrInvalidWindow.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.LogMode = "nop"
			cmd := NewScheduleCommand(tt.config)
			cmd.SetOutput(&bytes.Buffer{})

			err := cmd.Execute(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestScheduleCommand_Help(t *testing.T) {
	cmd := NewScheduleCommand(Config{Help: true})
	var buf bytes.Buffer
	cmd.SetOutput(&buf)

	require.NoError(t, cmd.Execute(context.Background()))
	assert.Contains(t, buf.String(), "purge-window")
}
