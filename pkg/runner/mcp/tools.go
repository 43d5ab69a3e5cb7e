package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerListAppointmentsTool(srv, svc)
	registerAppointmentsOnTool(srv, svc)
	registerGetAppointmentTool(srv, svc)
	registerCreateAppointmentTool(srv, svc)
	registerUpdateAppointmentTool(srv, svc)
	registerDeleteAppointmentTool(srv, svc)
	registerSyncStatusTool(srv, svc)
	registerSetOnlineTool(srv, svc)
	registerAgendaTool(srv, svc)
}

func categoryFilterOption() mcp.ToolOption {
	return mcp.WithString("category",
		mcp.Description("Optional category filter: work, home or all."),
		mcp.Enum("all", "work", "home"),
	)
}

func registerListAppointmentsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_appointments",
		mcp.WithDescription("List appointments in insertion order, optionally narrowed to one category."),
		categoryFilterOption(),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Category string `json:"category"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		list, err := svc.ListAppointments(ctx, args.Category)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"appointments": list,
			"count":        len(list),
		})
	})
}

func registerAppointmentsOnTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"appointments_on",
		mcp.WithDescription("List the appointments on one day, all-day entries first."),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Day in YYYY-MM-DD form."),
		),
		categoryFilterOption(),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Date     string `json:"date"`
			Category string `json:"category"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		list, err := svc.AppointmentsOn(ctx, args.Date, args.Category)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"date":         args.Date,
			"appointments": list,
			"count":        len(list),
		})
	})
}

func registerGetAppointmentTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"get_appointment",
		mcp.WithDescription("Fetch a single appointment by identifier."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Appointment identifier to fetch."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		dto, err := svc.AppointmentByID(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerCreateAppointmentTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"create_appointment",
		mcp.WithDescription("Create an appointment. It is queued for sync and confirmed when online."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Short title."),
		),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Day in YYYY-MM-DD form."),
		),
		mcp.WithString("category",
			mcp.Required(),
			mcp.Description("work or home."),
			mcp.Enum("work", "home"),
		),
		mcp.WithString("time",
			mcp.Description("Optional start time in HH:mm form. Ignored for all-day appointments."),
		),
		mcp.WithString("description",
			mcp.Description("Optional free text."),
		),
		mcp.WithBoolean("allDay",
			mcp.Description("Whether the appointment lasts all day."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args CreateOptions
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		dto, err := svc.Create(ctx, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerUpdateAppointmentTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"update_appointment",
		mcp.WithDescription("Change some fields of an appointment. Omitted fields are kept."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Appointment identifier to update."),
		),
		mcp.WithString("title", mcp.Description("New title.")),
		mcp.WithString("date", mcp.Description("New day in YYYY-MM-DD form.")),
		mcp.WithString("time", mcp.Description("New start time in HH:mm form, empty to clear.")),
		mcp.WithString("category",
			mcp.Description("New category."),
			mcp.Enum("work", "home"),
		),
		mcp.WithString("description", mcp.Description("New description.")),
		mcp.WithBoolean("allDay", mcp.Description("Whether the appointment lasts all day.")),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args UpdateOptions
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.ID == "" {
			return mcp.NewToolResultError("id is required"), nil
		}

		dto, err := svc.Update(ctx, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerDeleteAppointmentTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"delete_appointment",
		mcp.WithDescription("Delete an appointment. Deleting an unknown id is not an error."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Appointment identifier to delete."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		deleted, err := svc.Delete(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"id":      id,
			"deleted": deleted,
		})
	})
}

func registerSyncStatusTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"sync_status",
		mcp.WithDescription("Report connectivity, the pending change count and the queued operations."),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		st, err := svc.SyncStatus(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(st)
	})
}

func registerSetOnlineTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"set_online",
		mcp.WithDescription("Override connectivity. Going online drains the pending queue."),
		mcp.WithBoolean("online",
			mcp.Required(),
			mcp.Description("true to go online, false to go offline."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Online *bool `json:"online"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.Online == nil {
			return mcp.NewToolResultError("online is required"), nil
		}

		st, err := svc.SetOnline(ctx, *args.Online)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(st)
	})
}

func registerAgendaTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"agenda",
		mcp.WithDescription("Group appointments between two dates by day."),
		mcp.WithString("from",
			mcp.Required(),
			mcp.Description("First day in YYYY-MM-DD form."),
		),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Last day in YYYY-MM-DD form, inclusive."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		from, err := request.RequireString("from")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		to, err := request.RequireString("to")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		agenda, err := svc.Agenda(ctx, from, to)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(agenda)
	})
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
