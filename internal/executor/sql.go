package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/matehq/mate/internal/sqlguard"
	"github.com/matehq/mate/internal/tool"
)

func (e *Executor) sqlConnect(ctx context.Context, call tool.Call) tool.Result {
	if e.sql == nil {
		return sqlUnavailable(call.Tool)
	}

	id, err := e.sql.Connect(ctx, sqlguard.ConnectOptions{
		Server:   stringParam(call.Params, "server"),
		Database: stringParam(call.Params, "database"),
		Auth:     sqlguard.AuthMode(stringParam(call.Params, "auth_method")),
		Username: stringParam(call.Params, "username"),
		Password: stringParam(call.Params, "password"),
	})
	if err != nil {
		return tool.Fail(call.Tool, sqlKind(err), fmt.Errorf("executor: %w", err))
	}
	return tool.Ok(call.Tool, fmt.Sprintf(
		"connected (read-only enforced)\nconnection_id: %s\nuse this id for sql_query, sql_list_tables, sql_describe_table and sql_disconnect", id))
}

func (e *Executor) sqlQuery(ctx context.Context, call tool.Call) tool.Result {
	if e.sql == nil {
		return sqlUnavailable(call.Tool)
	}

	id := stringParam(call.Params, "connection_id")
	query := stringParam(call.Params, "query")

	rs, err := e.sql.Query(ctx, id, query)
	if err != nil {
		if errors.Is(err, sqlguard.ErrWriteRejected) {
			e.metrics.GuardRejections.Inc()
		}
		return tool.Fail(call.Tool, sqlKind(err), fmt.Errorf("executor: %w", err))
	}
	return tool.Ok(call.Tool, rs.Render())
}

func (e *Executor) sqlListTables(ctx context.Context, call tool.Call) tool.Result {
	if e.sql == nil {
		return sqlUnavailable(call.Tool)
	}

	rs, err := e.sql.ListTables(ctx, stringParam(call.Params, "connection_id"))
	if err != nil {
		return tool.Fail(call.Tool, sqlKind(err), fmt.Errorf("executor: %w", err))
	}
	return tool.Ok(call.Tool, rs.Render())
}

func (e *Executor) sqlDescribeTable(ctx context.Context, call tool.Call) tool.Result {
	if e.sql == nil {
		return sqlUnavailable(call.Tool)
	}

	rs, err := e.sql.DescribeTable(ctx,
		stringParam(call.Params, "connection_id"),
		stringParam(call.Params, "schema"),
		stringParam(call.Params, "table"))
	if err != nil {
		return tool.Fail(call.Tool, sqlKind(err), fmt.Errorf("executor: %w", err))
	}
	return tool.Ok(call.Tool, rs.Render())
}

func (e *Executor) sqlDisconnect(call tool.Call) tool.Result {
	if e.sql == nil {
		return sqlUnavailable(call.Tool)
	}

	id := stringParam(call.Params, "connection_id")
	if err := e.sql.Disconnect(id); err != nil {
		return tool.Fail(call.Tool, sqlKind(err), fmt.Errorf("executor: %w", err))
	}
	return tool.Ok(call.Tool, "disconnected "+id)
}

func sqlUnavailable(toolName string) tool.Result {
	return tool.Fail(toolName, tool.KindConnection,
		errors.New("executor: sql support is not configured"))
}

// sqlKind maps guard and registry errors onto result kinds. Guard
// rejections keep their distinct kind so the model learns the constraint
// instead of retrying.
func sqlKind(err error) tool.Kind {
	switch {
	case errors.Is(err, sqlguard.ErrWriteRejected):
		return tool.KindWriteRejected
	case errors.Is(err, sqlguard.ErrTimeout):
		return tool.KindTimeout
	case errors.Is(err, sqlguard.ErrNotFound),
		errors.Is(err, sqlguard.ErrConnect),
		errors.Is(err, sqlguard.ErrIntegratedAuth):
		return tool.KindConnection
	default:
		return tool.KindExecution
	}
}
