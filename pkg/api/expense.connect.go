package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

const (
	ExpenseServiceListExpensesProcedure     = "/travelmate.v1.ExpenseService/ListExpenses"
	ExpenseServiceGetExpenseProcedure       = "/travelmate.v1.ExpenseService/GetExpense"
	ExpenseServiceAddExpenseProcedure       = "/travelmate.v1.ExpenseService/AddExpense"
	ExpenseServiceUpdateExpenseProcedure    = "/travelmate.v1.ExpenseService/UpdateExpense"
	ExpenseServicePatchExpenseProcedure     = "/travelmate.v1.ExpenseService/PatchExpense"
	ExpenseServiceDeleteExpenseProcedure    = "/travelmate.v1.ExpenseService/DeleteExpense"
	ExpenseServiceGetBudgetSummaryProcedure = "/travelmate.v1.ExpenseService/GetBudgetSummary"
)

// ExpenseServiceHandler is implemented by the expense ledger service.
type ExpenseServiceHandler interface {
	ListExpenses(context.Context, *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error)
	GetExpense(context.Context, *connect.Request[GetExpenseRequest]) (*connect.Response[GetExpenseResponse], error)
	AddExpense(context.Context, *connect.Request[AddExpenseRequest]) (*connect.Response[AddExpenseResponse], error)
	UpdateExpense(context.Context, *connect.Request[UpdateExpenseRequest]) (*connect.Response[UpdateExpenseResponse], error)
	PatchExpense(context.Context, *connect.Request[PatchExpenseRequest]) (*connect.Response[PatchExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error)
	GetBudgetSummary(context.Context, *connect.Request[GetBudgetSummaryRequest]) (*connect.Response[GetBudgetSummaryResponse], error)
}

// NewExpenseServiceHandler returns the mount path and handler for svc.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return servicePath(ExpenseServiceName), routeProcedures(map[string]http.Handler{
		ExpenseServiceListExpensesProcedure:     connect.NewUnaryHandler(ExpenseServiceListExpensesProcedure, svc.ListExpenses, opts...),
		ExpenseServiceGetExpenseProcedure:       connect.NewUnaryHandler(ExpenseServiceGetExpenseProcedure, svc.GetExpense, opts...),
		ExpenseServiceAddExpenseProcedure:       connect.NewUnaryHandler(ExpenseServiceAddExpenseProcedure, svc.AddExpense, opts...),
		ExpenseServiceUpdateExpenseProcedure:    connect.NewUnaryHandler(ExpenseServiceUpdateExpenseProcedure, svc.UpdateExpense, opts...),
		ExpenseServicePatchExpenseProcedure:     connect.NewUnaryHandler(ExpenseServicePatchExpenseProcedure, svc.PatchExpense, opts...),
		ExpenseServiceDeleteExpenseProcedure:    connect.NewUnaryHandler(ExpenseServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...),
		ExpenseServiceGetBudgetSummaryProcedure: connect.NewUnaryHandler(ExpenseServiceGetBudgetSummaryProcedure, svc.GetBudgetSummary, opts...),
	})
}

// ExpenseServiceClient calls the expense ledger service.
type ExpenseServiceClient struct {
	listExpenses     *connect.Client[ListExpensesRequest, ListExpensesResponse]
	getExpense       *connect.Client[GetExpenseRequest, GetExpenseResponse]
	addExpense       *connect.Client[AddExpenseRequest, AddExpenseResponse]
	updateExpense    *connect.Client[UpdateExpenseRequest, UpdateExpenseResponse]
	patchExpense     *connect.Client[PatchExpenseRequest, PatchExpenseResponse]
	deleteExpense    *connect.Client[DeleteExpenseRequest, DeleteExpenseResponse]
	getBudgetSummary *connect.Client[GetBudgetSummaryRequest, GetBudgetSummaryResponse]
}

func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ExpenseServiceClient {
	opts = clientOptions(opts)
	return &ExpenseServiceClient{
		listExpenses:     connect.NewClient[ListExpensesRequest, ListExpensesResponse](httpClient, procedureURL(baseURL, ExpenseServiceListExpensesProcedure), opts...),
		getExpense:       connect.NewClient[GetExpenseRequest, GetExpenseResponse](httpClient, procedureURL(baseURL, ExpenseServiceGetExpenseProcedure), opts...),
		addExpense:       connect.NewClient[AddExpenseRequest, AddExpenseResponse](httpClient, procedureURL(baseURL, ExpenseServiceAddExpenseProcedure), opts...),
		updateExpense:    connect.NewClient[UpdateExpenseRequest, UpdateExpenseResponse](httpClient, procedureURL(baseURL, ExpenseServiceUpdateExpenseProcedure), opts...),
		patchExpense:     connect.NewClient[PatchExpenseRequest, PatchExpenseResponse](httpClient, procedureURL(baseURL, ExpenseServicePatchExpenseProcedure), opts...),
		deleteExpense:    connect.NewClient[DeleteExpenseRequest, DeleteExpenseResponse](httpClient, procedureURL(baseURL, ExpenseServiceDeleteExpenseProcedure), opts...),
		getBudgetSummary: connect.NewClient[GetBudgetSummaryRequest, GetBudgetSummaryResponse](httpClient, procedureURL(baseURL, ExpenseServiceGetBudgetSummaryProcedure), opts...),
	}
}

func (c *ExpenseServiceClient) ListExpenses(ctx context.Context, req *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) GetExpense(ctx context.Context, req *connect.Request[GetExpenseRequest]) (*connect.Response[GetExpenseResponse], error) {
	return c.getExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) AddExpense(ctx context.Context, req *connect.Request[AddExpenseRequest]) (*connect.Response[AddExpenseResponse], error) {
	return c.addExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) UpdateExpense(ctx context.Context, req *connect.Request[UpdateExpenseRequest]) (*connect.Response[UpdateExpenseResponse], error) {
	return c.updateExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) PatchExpense(ctx context.Context, req *connect.Request[PatchExpenseRequest]) (*connect.Response[PatchExpenseResponse], error) {
	return c.patchExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) GetBudgetSummary(ctx context.Context, req *connect.Request[GetBudgetSummaryRequest]) (*connect.Response[GetBudgetSummaryResponse], error) {
	return c.getBudgetSummary.CallUnary(ctx, req)
}
