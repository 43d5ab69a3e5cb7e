package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerResources(srv *server.MCPServer, svc *Service) {
	registerAppointmentsResource(srv, svc)
	registerStatusResource(srv, svc)
	registerDayTemplate(srv, svc)
	registerAppointmentTemplate(srv, svc)
}

func registerAppointmentsResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"apptcal://appointments",
		"Appointments",
		mcp.WithResourceDescription("Every appointment in insertion order."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		list, err := svc.ListAppointments(ctx, "")
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{
			"appointments": list,
			"count":        len(list),
		})
	})
}

func registerStatusResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"apptcal://status",
		"Sync Status",
		mcp.WithResourceDescription("Connectivity, pending change count and the queued operations."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		st, err := svc.SyncStatus(ctx)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, st)
	})
}

func registerDayTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"apptcal://days/{date}",
		"Day",
		mcp.WithTemplateDescription("Appointments on one day."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		date := templateArg(request.Params.Arguments, "date")
		if date == "" {
			return nil, fmt.Errorf("date is required")
		}
		list, err := svc.AppointmentsOn(ctx, date, "")
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{
			"date":         date,
			"appointments": list,
			"count":        len(list),
		})
	})
}

func registerAppointmentTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"apptcal://appointments/{id}",
		"Appointment Details",
		mcp.WithTemplateDescription("Detailed information about a single appointment."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		id := templateArg(request.Params.Arguments, "id")
		if id == "" {
			return nil, fmt.Errorf("appointment id is required")
		}
		dto, err := svc.AppointmentByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{
			"appointment": dto,
		})
	})
}

// templateArg reads a URI template variable. The server hands them over
// either as a string or as a single element slice.
func templateArg(args map[string]any, name string) string {
	switch v := args[name].(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
