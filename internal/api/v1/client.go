package v1

import (
	"context"

	"google.golang.org/grpc"
)

// FurgoClient is the client API for the Furgo service.
type FurgoClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error)
	Logout(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error)
	UpdateProfile(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*Empty, error)
	SaveChild(ctx context.Context, in *SaveChildRequest, opts ...grpc.CallOption) (*SaveChildResponse, error)
	ListChildren(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListChildrenResponse, error)
	SaveTutor(ctx context.Context, in *SaveTutorRequest, opts ...grpc.CallOption) (*SaveTutorResponse, error)
	ListTutors(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListTutorsResponse, error)
	SaveVehicle(ctx context.Context, in *SaveVehicleRequest, opts ...grpc.CallOption) (*SaveVehicleResponse, error)
	PublishVan(ctx context.Context, in *PublishVanRequest, opts ...grpc.CallOption) (*PublishVanResponse, error)
	ListVans(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListVansResponse, error)
	GetMedicalFile(ctx context.Context, in *GetMedicalFileRequest, opts ...grpc.CallOption) (*GetMedicalFileResponse, error)
	SubmitApplication(ctx context.Context, in *SubmitApplicationRequest, opts ...grpc.CallOption) (*SubmitApplicationResponse, error)
	AcceptApplication(ctx context.Context, in *ApplicationRef, opts ...grpc.CallOption) (*AcceptApplicationResponse, error)
	RejectApplication(ctx context.Context, in *ApplicationRef, opts ...grpc.CallOption) (*Empty, error)
	ListApplications(ctx context.Context, in *ListApplicationsRequest, opts ...grpc.CallOption) (*ListApplicationsResponse, error)
	GetApplicationHistory(ctx context.Context, in *ApplicationRef, opts ...grpc.CallOption) (*ApplicationHistoryResponse, error)
	ListPassengers(ctx context.Context, in *ListPassengersRequest, opts ...grpc.CallOption) (*ListPassengersResponse, error)
	OpenConversation(ctx context.Context, in *ConversationRef, opts ...grpc.CallOption) (*ConversationSnapshot, error)
	SendMessage(ctx context.Context, in *SendMessageRequest, opts ...grpc.CallOption) (*SendMessageResponse, error)
	WatchConversation(ctx context.Context, in *ConversationRef, opts ...grpc.CallOption) (grpc.ServerStreamingClient[ConversationSnapshot], error)
	OpenEmergencyChat(ctx context.Context, in *OpenEmergencyChatRequest, opts ...grpc.CallOption) (*OpenEmergencyChatResponse, error)
	BroadcastAlert(ctx context.Context, in *BroadcastAlertRequest, opts ...grpc.CallOption) (*BroadcastAlertResponse, error)
	ListAlerts(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListAlertsResponse, error)
	MarkAlertRead(ctx context.Context, in *MarkAlertReadRequest, opts ...grpc.CallOption) (*Empty, error)
}

type furgoClient struct {
	cc grpc.ClientConnInterface
}

// NewFurgoClient returns a client that speaks the JSON codec on cc.
func NewFurgoClient(cc grpc.ClientConnInterface) FurgoClient {
	return &furgoClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *furgoClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c.cc, Furgo_Register_FullMethodName, in, opts)
}

func (c *furgoClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, Furgo_Login_FullMethodName, in, opts)
}

func (c *furgoClient) Logout(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, Furgo_Logout_FullMethodName, in, opts)
}

func (c *furgoClient) UpdateProfile(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, Furgo_UpdateProfile_FullMethodName, in, opts)
}

func (c *furgoClient) SaveChild(ctx context.Context, in *SaveChildRequest, opts ...grpc.CallOption) (*SaveChildResponse, error) {
	return invoke[SaveChildResponse](ctx, c.cc, Furgo_SaveChild_FullMethodName, in, opts)
}

func (c *furgoClient) ListChildren(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListChildrenResponse, error) {
	return invoke[ListChildrenResponse](ctx, c.cc, Furgo_ListChildren_FullMethodName, in, opts)
}

func (c *furgoClient) SaveTutor(ctx context.Context, in *SaveTutorRequest, opts ...grpc.CallOption) (*SaveTutorResponse, error) {
	return invoke[SaveTutorResponse](ctx, c.cc, Furgo_SaveTutor_FullMethodName, in, opts)
}

func (c *furgoClient) ListTutors(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListTutorsResponse, error) {
	return invoke[ListTutorsResponse](ctx, c.cc, Furgo_ListTutors_FullMethodName, in, opts)
}

func (c *furgoClient) SaveVehicle(ctx context.Context, in *SaveVehicleRequest, opts ...grpc.CallOption) (*SaveVehicleResponse, error) {
	return invoke[SaveVehicleResponse](ctx, c.cc, Furgo_SaveVehicle_FullMethodName, in, opts)
}

func (c *furgoClient) PublishVan(ctx context.Context, in *PublishVanRequest, opts ...grpc.CallOption) (*PublishVanResponse, error) {
	return invoke[PublishVanResponse](ctx, c.cc, Furgo_PublishVan_FullMethodName, in, opts)
}

func (c *furgoClient) ListVans(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListVansResponse, error) {
	return invoke[ListVansResponse](ctx, c.cc, Furgo_ListVans_FullMethodName, in, opts)
}

func (c *furgoClient) GetMedicalFile(ctx context.Context, in *GetMedicalFileRequest, opts ...grpc.CallOption) (*GetMedicalFileResponse, error) {
	return invoke[GetMedicalFileResponse](ctx, c.cc, Furgo_GetMedicalFile_FullMethodName, in, opts)
}

func (c *furgoClient) SubmitApplication(ctx context.Context, in *SubmitApplicationRequest, opts ...grpc.CallOption) (*SubmitApplicationResponse, error) {
	return invoke[SubmitApplicationResponse](ctx, c.cc, Furgo_SubmitApplication_FullMethodName, in, opts)
}

func (c *furgoClient) AcceptApplication(ctx context.Context, in *ApplicationRef, opts ...grpc.CallOption) (*AcceptApplicationResponse, error) {
	return invoke[AcceptApplicationResponse](ctx, c.cc, Furgo_AcceptApplication_FullMethodName, in, opts)
}

func (c *furgoClient) RejectApplication(ctx context.Context, in *ApplicationRef, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, Furgo_RejectApplication_FullMethodName, in, opts)
}

func (c *furgoClient) ListApplications(ctx context.Context, in *ListApplicationsRequest, opts ...grpc.CallOption) (*ListApplicationsResponse, error) {
	return invoke[ListApplicationsResponse](ctx, c.cc, Furgo_ListApplications_FullMethodName, in, opts)
}

func (c *furgoClient) GetApplicationHistory(ctx context.Context, in *ApplicationRef, opts ...grpc.CallOption) (*ApplicationHistoryResponse, error) {
	return invoke[ApplicationHistoryResponse](ctx, c.cc, Furgo_GetApplicationHistory_FullMethodName, in, opts)
}

func (c *furgoClient) ListPassengers(ctx context.Context, in *ListPassengersRequest, opts ...grpc.CallOption) (*ListPassengersResponse, error) {
	return invoke[ListPassengersResponse](ctx, c.cc, Furgo_ListPassengers_FullMethodName, in, opts)
}

func (c *furgoClient) OpenConversation(ctx context.Context, in *ConversationRef, opts ...grpc.CallOption) (*ConversationSnapshot, error) {
	return invoke[ConversationSnapshot](ctx, c.cc, Furgo_OpenConversation_FullMethodName, in, opts)
}

func (c *furgoClient) SendMessage(ctx context.Context, in *SendMessageRequest, opts ...grpc.CallOption) (*SendMessageResponse, error) {
	return invoke[SendMessageResponse](ctx, c.cc, Furgo_SendMessage_FullMethodName, in, opts)
}

func (c *furgoClient) WatchConversation(ctx context.Context, in *ConversationRef, opts ...grpc.CallOption) (grpc.ServerStreamingClient[ConversationSnapshot], error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	stream, err := c.cc.NewStream(ctx, &Furgo_ServiceDesc.Streams[0], Furgo_WatchConversation_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[ConversationRef, ConversationSnapshot]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

func (c *furgoClient) OpenEmergencyChat(ctx context.Context, in *OpenEmergencyChatRequest, opts ...grpc.CallOption) (*OpenEmergencyChatResponse, error) {
	return invoke[OpenEmergencyChatResponse](ctx, c.cc, Furgo_OpenEmergencyChat_FullMethodName, in, opts)
}

func (c *furgoClient) BroadcastAlert(ctx context.Context, in *BroadcastAlertRequest, opts ...grpc.CallOption) (*BroadcastAlertResponse, error) {
	return invoke[BroadcastAlertResponse](ctx, c.cc, Furgo_BroadcastAlert_FullMethodName, in, opts)
}

func (c *furgoClient) ListAlerts(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListAlertsResponse, error) {
	return invoke[ListAlertsResponse](ctx, c.cc, Furgo_ListAlerts_FullMethodName, in, opts)
}

func (c *furgoClient) MarkAlertRead(ctx context.Context, in *MarkAlertReadRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, Furgo_MarkAlertRead_FullMethodName, in, opts)
}
