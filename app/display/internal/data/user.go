package data

import (
	"context"
	stderrors "errors"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/micheleparry/GovIdea/app/display/internal/biz"
	"github.com/micheleparry/GovIdea/app/radar/pkg/model"
	"github.com/micheleparry/GovIdea/app/radar/pkg/storage"
)

var errUserNotFound = errors.NotFound("USER_NOT_FOUND", "user not found")

type userRepo struct {
	data *Data
	log  *log.Helper
}

func NewUserRepo(data *Data, logger log.Logger) biz.UserRepo {
	return &userRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *userRepo) CreateUser(ctx context.Context, u *model.User) error {
	err := r.data.store.CreateUser(ctx, u)
	if stderrors.Is(err, storage.ErrDuplicate) {
		return errors.Conflict("USERNAME_TAKEN", "username already exists")
	}
	if err != nil {
		return r.data.dbError("create user", err)
	}
	return nil
}

func (r *userRepo) GetUser(ctx context.Context, id string) (*model.User, error) {
	return r.lookup(r.data.store.GetUser(ctx, id))
}

func (r *userRepo) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.lookup(r.data.store.GetUserByUsername(ctx, username))
}

func (r *userRepo) lookup(u *model.User, err error) (*model.User, error) {
	if stderrors.Is(err, storage.ErrNotFound) {
		return nil, errUserNotFound
	}
	if err != nil {
		return nil, r.data.dbError("get user", err)
	}
	return u, nil
}
