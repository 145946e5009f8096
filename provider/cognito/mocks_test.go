package cognito

import (
	"context"

	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/stretchr/testify/mock"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) SignUp(ctx context.Context, params *cip.SignUpInput, _ ...func(*cip.Options)) (*cip.SignUpOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*cip.SignUpOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPI) ConfirmSignUp(ctx context.Context, params *cip.ConfirmSignUpInput, _ ...func(*cip.Options)) (*cip.ConfirmSignUpOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*cip.ConfirmSignUpOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPI) ResendConfirmationCode(ctx context.Context, params *cip.ResendConfirmationCodeInput, _ ...func(*cip.Options)) (*cip.ResendConfirmationCodeOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*cip.ResendConfirmationCodeOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPI) InitiateAuth(ctx context.Context, params *cip.InitiateAuthInput, _ ...func(*cip.Options)) (*cip.InitiateAuthOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*cip.InitiateAuthOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPI) ForgotPassword(ctx context.Context, params *cip.ForgotPasswordInput, _ ...func(*cip.Options)) (*cip.ForgotPasswordOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*cip.ForgotPasswordOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPI) ConfirmForgotPassword(ctx context.Context, params *cip.ConfirmForgotPasswordInput, _ ...func(*cip.Options)) (*cip.ConfirmForgotPasswordOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*cip.ConfirmForgotPasswordOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPI) ChangePassword(ctx context.Context, params *cip.ChangePasswordInput, _ ...func(*cip.Options)) (*cip.ChangePasswordOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*cip.ChangePasswordOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPI) DeleteUser(ctx context.Context, params *cip.DeleteUserInput, _ ...func(*cip.Options)) (*cip.DeleteUserOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*cip.DeleteUserOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPI) GlobalSignOut(ctx context.Context, params *cip.GlobalSignOutInput, _ ...func(*cip.Options)) (*cip.GlobalSignOutOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*cip.GlobalSignOutOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPI) GetUser(ctx context.Context, params *cip.GetUserInput, _ ...func(*cip.Options)) (*cip.GetUserOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*cip.GetUserOutput), args.Error(1)
	}
	return nil, args.Error(1)
}
