package v1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "furgo.v1.Furgo"

const (
	Furgo_Register_FullMethodName              = "/furgo.v1.Furgo/Register"
	Furgo_Login_FullMethodName                 = "/furgo.v1.Furgo/Login"
	Furgo_Logout_FullMethodName                = "/furgo.v1.Furgo/Logout"
	Furgo_UpdateProfile_FullMethodName         = "/furgo.v1.Furgo/UpdateProfile"
	Furgo_SaveChild_FullMethodName             = "/furgo.v1.Furgo/SaveChild"
	Furgo_ListChildren_FullMethodName          = "/furgo.v1.Furgo/ListChildren"
	Furgo_SaveTutor_FullMethodName             = "/furgo.v1.Furgo/SaveTutor"
	Furgo_ListTutors_FullMethodName            = "/furgo.v1.Furgo/ListTutors"
	Furgo_SaveVehicle_FullMethodName           = "/furgo.v1.Furgo/SaveVehicle"
	Furgo_PublishVan_FullMethodName            = "/furgo.v1.Furgo/PublishVan"
	Furgo_ListVans_FullMethodName              = "/furgo.v1.Furgo/ListVans"
	Furgo_GetMedicalFile_FullMethodName        = "/furgo.v1.Furgo/GetMedicalFile"
	Furgo_SubmitApplication_FullMethodName     = "/furgo.v1.Furgo/SubmitApplication"
	Furgo_AcceptApplication_FullMethodName     = "/furgo.v1.Furgo/AcceptApplication"
	Furgo_RejectApplication_FullMethodName     = "/furgo.v1.Furgo/RejectApplication"
	Furgo_ListApplications_FullMethodName      = "/furgo.v1.Furgo/ListApplications"
	Furgo_GetApplicationHistory_FullMethodName = "/furgo.v1.Furgo/GetApplicationHistory"
	Furgo_ListPassengers_FullMethodName        = "/furgo.v1.Furgo/ListPassengers"
	Furgo_OpenConversation_FullMethodName      = "/furgo.v1.Furgo/OpenConversation"
	Furgo_SendMessage_FullMethodName           = "/furgo.v1.Furgo/SendMessage"
	Furgo_WatchConversation_FullMethodName     = "/furgo.v1.Furgo/WatchConversation"
	Furgo_OpenEmergencyChat_FullMethodName     = "/furgo.v1.Furgo/OpenEmergencyChat"
	Furgo_BroadcastAlert_FullMethodName        = "/furgo.v1.Furgo/BroadcastAlert"
	Furgo_ListAlerts_FullMethodName            = "/furgo.v1.Furgo/ListAlerts"
	Furgo_MarkAlertRead_FullMethodName         = "/furgo.v1.Furgo/MarkAlertRead"
)

// FurgoServer is the server API for the Furgo service.
// Implementations must embed UnimplementedFurgoServer.
type FurgoServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	Logout(context.Context, *Empty) (*Empty, error)
	UpdateProfile(context.Context, *UpdateProfileRequest) (*Empty, error)

	SaveChild(context.Context, *SaveChildRequest) (*SaveChildResponse, error)
	ListChildren(context.Context, *Empty) (*ListChildrenResponse, error)
	SaveTutor(context.Context, *SaveTutorRequest) (*SaveTutorResponse, error)
	ListTutors(context.Context, *Empty) (*ListTutorsResponse, error)
	SaveVehicle(context.Context, *SaveVehicleRequest) (*SaveVehicleResponse, error)
	PublishVan(context.Context, *PublishVanRequest) (*PublishVanResponse, error)
	ListVans(context.Context, *Empty) (*ListVansResponse, error)
	GetMedicalFile(context.Context, *GetMedicalFileRequest) (*GetMedicalFileResponse, error)

	SubmitApplication(context.Context, *SubmitApplicationRequest) (*SubmitApplicationResponse, error)
	AcceptApplication(context.Context, *ApplicationRef) (*AcceptApplicationResponse, error)
	RejectApplication(context.Context, *ApplicationRef) (*Empty, error)
	ListApplications(context.Context, *ListApplicationsRequest) (*ListApplicationsResponse, error)
	GetApplicationHistory(context.Context, *ApplicationRef) (*ApplicationHistoryResponse, error)
	ListPassengers(context.Context, *ListPassengersRequest) (*ListPassengersResponse, error)

	OpenConversation(context.Context, *ConversationRef) (*ConversationSnapshot, error)
	SendMessage(context.Context, *SendMessageRequest) (*SendMessageResponse, error)
	WatchConversation(*ConversationRef, grpc.ServerStreamingServer[ConversationSnapshot]) error
	OpenEmergencyChat(context.Context, *OpenEmergencyChatRequest) (*OpenEmergencyChatResponse, error)

	BroadcastAlert(context.Context, *BroadcastAlertRequest) (*BroadcastAlertResponse, error)
	ListAlerts(context.Context, *Empty) (*ListAlertsResponse, error)
	MarkAlertRead(context.Context, *MarkAlertReadRequest) (*Empty, error)

	mustEmbedUnimplementedFurgoServer()
}

// UnimplementedFurgoServer must be embedded to have forward compatible
// implementations.
type UnimplementedFurgoServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedFurgoServer) Register(context.Context, *RegisterRequest) (*RegisterResponse, error) {
	return nil, unimplemented("Register")
}
func (UnimplementedFurgoServer) Login(context.Context, *LoginRequest) (*LoginResponse, error) {
	return nil, unimplemented("Login")
}
func (UnimplementedFurgoServer) Logout(context.Context, *Empty) (*Empty, error) {
	return nil, unimplemented("Logout")
}
func (UnimplementedFurgoServer) UpdateProfile(context.Context, *UpdateProfileRequest) (*Empty, error) {
	return nil, unimplemented("UpdateProfile")
}
func (UnimplementedFurgoServer) SaveChild(context.Context, *SaveChildRequest) (*SaveChildResponse, error) {
	return nil, unimplemented("SaveChild")
}
func (UnimplementedFurgoServer) ListChildren(context.Context, *Empty) (*ListChildrenResponse, error) {
	return nil, unimplemented("ListChildren")
}
func (UnimplementedFurgoServer) SaveTutor(context.Context, *SaveTutorRequest) (*SaveTutorResponse, error) {
	return nil, unimplemented("SaveTutor")
}
func (UnimplementedFurgoServer) ListTutors(context.Context, *Empty) (*ListTutorsResponse, error) {
	return nil, unimplemented("ListTutors")
}
func (UnimplementedFurgoServer) SaveVehicle(context.Context, *SaveVehicleRequest) (*SaveVehicleResponse, error) {
	return nil, unimplemented("SaveVehicle")
}
func (UnimplementedFurgoServer) PublishVan(context.Context, *PublishVanRequest) (*PublishVanResponse, error) {
	return nil, unimplemented("PublishVan")
}
func (UnimplementedFurgoServer) ListVans(context.Context, *Empty) (*ListVansResponse, error) {
	return nil, unimplemented("ListVans")
}
func (UnimplementedFurgoServer) GetMedicalFile(context.Context, *GetMedicalFileRequest) (*GetMedicalFileResponse, error) {
	return nil, unimplemented("GetMedicalFile")
}
func (UnimplementedFurgoServer) SubmitApplication(context.Context, *SubmitApplicationRequest) (*SubmitApplicationResponse, error) {
	return nil, unimplemented("SubmitApplication")
}
func (UnimplementedFurgoServer) AcceptApplication(context.Context, *ApplicationRef) (*AcceptApplicationResponse, error) {
	return nil, unimplemented("AcceptApplication")
}
func (UnimplementedFurgoServer) RejectApplication(context.Context, *ApplicationRef) (*Empty, error) {
	return nil, unimplemented("RejectApplication")
}
func (UnimplementedFurgoServer) ListApplications(context.Context, *ListApplicationsRequest) (*ListApplicationsResponse, error) {
	return nil, unimplemented("ListApplications")
}
func (UnimplementedFurgoServer) GetApplicationHistory(context.Context, *ApplicationRef) (*ApplicationHistoryResponse, error) {
	return nil, unimplemented("GetApplicationHistory")
}
func (UnimplementedFurgoServer) ListPassengers(context.Context, *ListPassengersRequest) (*ListPassengersResponse, error) {
	return nil, unimplemented("ListPassengers")
}
func (UnimplementedFurgoServer) OpenConversation(context.Context, *ConversationRef) (*ConversationSnapshot, error) {
	return nil, unimplemented("OpenConversation")
}
func (UnimplementedFurgoServer) SendMessage(context.Context, *SendMessageRequest) (*SendMessageResponse, error) {
	return nil, unimplemented("SendMessage")
}
func (UnimplementedFurgoServer) WatchConversation(*ConversationRef, grpc.ServerStreamingServer[ConversationSnapshot]) error {
	return unimplemented("WatchConversation")
}
func (UnimplementedFurgoServer) OpenEmergencyChat(context.Context, *OpenEmergencyChatRequest) (*OpenEmergencyChatResponse, error) {
	return nil, unimplemented("OpenEmergencyChat")
}
func (UnimplementedFurgoServer) BroadcastAlert(context.Context, *BroadcastAlertRequest) (*BroadcastAlertResponse, error) {
	return nil, unimplemented("BroadcastAlert")
}
func (UnimplementedFurgoServer) ListAlerts(context.Context, *Empty) (*ListAlertsResponse, error) {
	return nil, unimplemented("ListAlerts")
}
func (UnimplementedFurgoServer) MarkAlertRead(context.Context, *MarkAlertReadRequest) (*Empty, error) {
	return nil, unimplemented("MarkAlertRead")
}
func (UnimplementedFurgoServer) mustEmbedUnimplementedFurgoServer() {}

// RegisterFurgoServer registers srv on s.
func RegisterFurgoServer(s grpc.ServiceRegistrar, srv FurgoServer) {
	s.RegisterService(&Furgo_ServiceDesc, srv)
}

// unary adapts a FurgoServer method to a grpc.MethodHandler.
func unary[Req, Resp any](fullMethod string, call func(FurgoServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(FurgoServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(FurgoServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func watchConversationHandler(srv any, stream grpc.ServerStream) error {
	in := new(ConversationRef)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(FurgoServer).WatchConversation(in, &grpc.GenericServerStream[ConversationRef, ConversationSnapshot]{ServerStream: stream})
}

// Furgo_ServiceDesc is the grpc.ServiceDesc for the Furgo service.
var Furgo_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FurgoServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unary(Furgo_Register_FullMethodName, FurgoServer.Register)},
		{MethodName: "Login", Handler: unary(Furgo_Login_FullMethodName, FurgoServer.Login)},
		{MethodName: "Logout", Handler: unary(Furgo_Logout_FullMethodName, FurgoServer.Logout)},
		{MethodName: "UpdateProfile", Handler: unary(Furgo_UpdateProfile_FullMethodName, FurgoServer.UpdateProfile)},
		{MethodName: "SaveChild", Handler: unary(Furgo_SaveChild_FullMethodName, FurgoServer.SaveChild)},
		{MethodName: "ListChildren", Handler: unary(Furgo_ListChildren_FullMethodName, FurgoServer.ListChildren)},
		{MethodName: "SaveTutor", Handler: unary(Furgo_SaveTutor_FullMethodName, FurgoServer.SaveTutor)},
		{MethodName: "ListTutors", Handler: unary(Furgo_ListTutors_FullMethodName, FurgoServer.ListTutors)},
		{MethodName: "SaveVehicle", Handler: unary(Furgo_SaveVehicle_FullMethodName, FurgoServer.SaveVehicle)},
		{MethodName: "PublishVan", Handler: unary(Furgo_PublishVan_FullMethodName, FurgoServer.PublishVan)},
		{MethodName: "ListVans", Handler: unary(Furgo_ListVans_FullMethodName, FurgoServer.ListVans)},
		{MethodName: "GetMedicalFile", Handler: unary(Furgo_GetMedicalFile_FullMethodName, FurgoServer.GetMedicalFile)},
		{MethodName: "SubmitApplication", Handler: unary(Furgo_SubmitApplication_FullMethodName, FurgoServer.SubmitApplication)},
		{MethodName: "AcceptApplication", Handler: unary(Furgo_AcceptApplication_FullMethodName, FurgoServer.AcceptApplication)},
		{MethodName: "RejectApplication", Handler: unary(Furgo_RejectApplication_FullMethodName, FurgoServer.RejectApplication)},
		{MethodName: "ListApplications", Handler: unary(Furgo_ListApplications_FullMethodName, FurgoServer.ListApplications)},
		{MethodName: "GetApplicationHistory", Handler: unary(Furgo_GetApplicationHistory_FullMethodName, FurgoServer.GetApplicationHistory)},
		{MethodName: "ListPassengers", Handler: unary(Furgo_ListPassengers_FullMethodName, FurgoServer.ListPassengers)},
		{MethodName: "OpenConversation", Handler: unary(Furgo_OpenConversation_FullMethodName, FurgoServer.OpenConversation)},
		{MethodName: "SendMessage", Handler: unary(Furgo_SendMessage_FullMethodName, FurgoServer.SendMessage)},
		{MethodName: "OpenEmergencyChat", Handler: unary(Furgo_OpenEmergencyChat_FullMethodName, FurgoServer.OpenEmergencyChat)},
		{MethodName: "BroadcastAlert", Handler: unary(Furgo_BroadcastAlert_FullMethodName, FurgoServer.BroadcastAlert)},
		{MethodName: "ListAlerts", Handler: unary(Furgo_ListAlerts_FullMethodName, FurgoServer.ListAlerts)},
		{MethodName: "MarkAlertRead", Handler: unary(Furgo_MarkAlertRead_FullMethodName, FurgoServer.MarkAlertRead)},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchConversation",
			Handler:       watchConversationHandler,
			ServerStreams: true,
		},
	},
	Metadata: "furgo/v1/furgo.json",
}
