package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"shop-api/internal/events"
	"shop-api/internal/models"
	"shop-api/internal/repo/imagekit"
	"shop-api/internal/repo/mongodb"
	"shop-api/pkg/util"
)

// Attachment is one uploaded file from the create request.
type Attachment struct {
	FileName string
	Content  []byte
}

type CreateProductParams struct {
	Name  string
	Price float64
	Stock int
	Files []Attachment
}

type ProductUsecase interface {
	Create(ctx context.Context, actor *models.User, params CreateProductParams) (*models.Product, error)
	List(ctx context.Context, actor *models.User, query models.ListProductsQuery) (*models.ProductPage, error)
	GetByID(ctx context.Context, actor *models.User, id string) (*models.Product, error)
	Update(ctx context.Context, id string, req models.UpdateProductRequest) error
	Delete(ctx context.Context, id string) error
}

type productUsecase struct {
	productRepo mongodb.ProductRepository
	shopRepo    mongodb.ShopRepository
	userRepo    mongodb.UserRepository
	images      imagekit.Client
	publisher   events.Publisher
}

func NewProductUsecase(
	productRepo mongodb.ProductRepository,
	shopRepo mongodb.ShopRepository,
	userRepo mongodb.UserRepository,
	images imagekit.Client,
	publisher events.Publisher,
) ProductUsecase {
	return &productUsecase{
		productRepo: productRepo,
		shopRepo:    shopRepo,
		userRepo:    userRepo,
		images:      images,
		publisher:   publisher,
	}
}

// Create uploads every attachment concurrently, then persists the product
// with the actor's shop and user ids. Uploads are joined before anything is
// written: the first failure aborts the create and already-uploaded files are
// deleted from the image host. URLs keep the attachment order.
func (uc *productUsecase) Create(ctx context.Context, actor *models.User, params CreateProductParams) (*models.Product, error) {
	urls := make([]string, len(params.Files))
	fileIDs := make([]string, len(params.Files))

	group, gctx := errgroup.WithContext(ctx)
	for i, file := range params.Files {
		group.Go(func() error {
			image, err := uc.images.Upload(gctx, file.Content, uploadName(file.FileName))
			if err != nil {
				return fmt.Errorf("upload %q: %w", file.FileName, err)
			}
			urls[i] = image.URL
			fileIDs[i] = image.FileID
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		uc.cleanupUploads(ctx, fileIDs)
		return nil, err
	}

	product := &models.Product{
		Name:     params.Name,
		Price:    params.Price,
		Stock:    params.Stock,
		ImageURL: urls,
		ShopID:   actor.ShopID,
		UserID:   actor.ID,
	}
	if err := uc.productRepo.Create(ctx, product); err != nil {
		uc.cleanupUploads(ctx, fileIDs)
		return nil, err
	}

	log.Infow(ctx, "product created", "product_id", product.ID.Hex(), "shop_id", product.ShopID.Hex())
	uc.publish(ctx, events.ProductCreated, product.ID.Hex(), product.ShopID.Hex())

	return product, nil
}

// uploadName derives the stored file name from a timestamp plus whatever
// follows the last dot of the original name.
func uploadName(original string) string {
	parts := strings.Split(original, ".")
	extension := parts[len(parts)-1]
	return fmt.Sprintf("IMG-%d.%s", time.Now().UnixMilli(), extension)
}

func (uc *productUsecase) cleanupUploads(ctx context.Context, fileIDs []string) {
	for _, fileID := range fileIDs {
		if fileID == "" {
			continue
		}
		if err := uc.images.Delete(ctx, fileID); err != nil {
			log.Warnw(ctx, "failed to delete uploaded image", "file_id", fileID, "error", err)
		}
	}
}

// List pages products under the combined filter. Non-Admin actors are always
// pinned to their own shop, whatever the shop filter says.
func (uc *productUsecase) List(ctx context.Context, actor *models.User, query models.ListProductsQuery) (*models.ProductPage, error) {
	filter := bson.M{}

	if query.ProductName != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(query.ProductName), Options: "i"}
	}

	if query.Username != "" {
		userIDs, err := uc.userRepo.FindIDsByNamePrefix(ctx, query.Username)
		if err != nil {
			return nil, fmt.Errorf("filter by username: %w", err)
		}
		filter["user_id"] = bson.M{"$in": userIDs}
	}

	var shopIDs []primitive.ObjectID
	if query.Shop != "" {
		ids, err := uc.shopRepo.FindIDsByName(ctx, query.Shop)
		if err != nil {
			return nil, fmt.Errorf("filter by shop: %w", err)
		}
		shopIDs = ids
	}
	if !actor.IsAdmin() {
		shopIDs = restrictToShop(shopIDs, actor.ShopID)
	}
	if shopIDs != nil {
		filter["shop_id"] = bson.M{"$in": shopIDs}
	}

	skip := (query.PageNum - 1) * query.PageSize
	page, err := uc.productRepo.FindPage(ctx, filter, query.PageSize, skip)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}

	items, err := uc.enrich(ctx, page.Items)
	if err != nil {
		return nil, err
	}

	totalPages := (page.Total + query.PageSize - 1) / query.PageSize
	return &models.ProductPage{
		Products: items,
		Pagination: models.Pagination{
			TotalData:  page.Total,
			TotalPages: totalPages,
			PageNum:    query.PageNum,
			PageSize:   query.PageSize,
		},
	}, nil
}

// restrictToShop intersects an optional shop filter with the actor's own
// shop. A nil input means "no shop filter", which still collapses to the
// actor's shop.
func restrictToShop(shopIDs []primitive.ObjectID, own primitive.ObjectID) []primitive.ObjectID {
	if shopIDs == nil || util.SliceIncludes(shopIDs, own) {
		return []primitive.ObjectID{own}
	}
	return []primitive.ObjectID{}
}

func (uc *productUsecase) enrich(ctx context.Context, products []*models.Product) ([]models.ProductListItem, error) {
	shopIDSet := make(map[primitive.ObjectID]struct{})
	userIDSet := make(map[primitive.ObjectID]struct{})
	for _, p := range products {
		shopIDSet[p.ShopID] = struct{}{}
		userIDSet[p.UserID] = struct{}{}
	}

	shops, err := uc.shopRepo.GetByIDs(ctx, setToSlice(shopIDSet))
	if err != nil {
		return nil, fmt.Errorf("load shops: %w", err)
	}
	users, err := uc.userRepo.GetByIDs(ctx, setToSlice(userIDSet))
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	items := util.ConvertList(products, func(p *models.Product) models.ProductListItem {
		item := models.ProductListItem{
			Name:      p.Name,
			Price:     p.Price,
			Stock:     p.Stock,
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		}
		if shop, ok := shops[p.ShopID]; ok {
			item.Shop = models.ShopRef{ID: shop.ID, Name: shop.Name}
		}
		if user, ok := users[p.UserID]; ok {
			item.User = models.UserRef{Name: user.Name}
		}
		return item
	})
	return items, nil
}

func setToSlice(set map[primitive.ObjectID]struct{}) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}

// GetByID returns the product only when the actor's shop owns it. The
// ownership check applies to every role, Admin included.
func (uc *productUsecase) GetByID(ctx context.Context, actor *models.User, id string) (*models.Product, error) {
	productID, err := parseProductID(id)
	if err != nil {
		return nil, err
	}

	product, err := uc.productRepo.GetByID(ctx, productID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.NewAppError("product not found", http.StatusNotFound)
	}
	if err != nil {
		return nil, err
	}

	if product.ShopID != actor.ShopID {
		return nil, models.ErrNotShopOwner
	}

	return product, nil
}

// Update sets only the provided fields. There is no existence check: an
// unknown id is a silent no-op reported as success.
func (uc *productUsecase) Update(ctx context.Context, id string, req models.UpdateProductRequest) error {
	productID, err := parseProductID(id)
	if err != nil {
		return err
	}

	set := bson.M{}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Price != nil {
		set["price"] = *req.Price
	}
	if req.Stock != nil {
		set["stock"] = *req.Stock
	}
	if len(set) == 0 {
		return nil
	}

	if err := uc.productRepo.Update(ctx, productID, set); err != nil {
		return err
	}

	uc.publish(ctx, events.ProductUpdated, id, "")
	return nil
}

// Delete removes the product, failing with a not-found error before touching
// anything when the id does not exist.
func (uc *productUsecase) Delete(ctx context.Context, id string) error {
	productID, err := parseProductID(id)
	if err != nil {
		return err
	}

	product, err := uc.productRepo.GetByID(ctx, productID)
	if errors.Is(err, models.ErrNotFound) {
		return models.NewAppError("product not found", http.StatusNotFound)
	}
	if err != nil {
		return err
	}

	if err := uc.productRepo.Delete(ctx, productID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.NewAppError("product not found", http.StatusNotFound)
		}
		return err
	}

	uc.publish(ctx, events.ProductDeleted, id, product.ShopID.Hex())
	return nil
}

func (uc *productUsecase) publish(ctx context.Context, event, productID, shopID string) {
	err := uc.publisher.Publish(ctx, events.ProductEvent{
		Event:     event,
		ProductID: productID,
		ShopID:    shopID,
	})
	if err != nil {
		log.Warnw(ctx, "failed to publish product event", "event", event, "product_id", productID, "error", err)
	}
}

func parseProductID(id string) (primitive.ObjectID, error) {
	productID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, models.NewAppError("invalid product ID", http.StatusBadRequest)
	}
	return productID, nil
}
