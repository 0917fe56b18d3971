package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/ec-storefront/internal/domain/category"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const categoryKeysIndex = "category_keys"

// MongoStore stores products and orders in two collections. Money is kept
// as decimal strings so no precision is lost on the way through BSON.
type MongoStore struct {
	products *mongo.Collection
	orders   *mongo.Collection
	now      func() time.Time
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		products: db.Collection("products"),
		orders:   db.Collection("orders"),
		now:      time.Now,
	}
}

// ConnectMongo connects to uri and pings the primary.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes the store queries rely on. Without the
// category index ListByCategory reports ErrQueryUnsupported.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.products.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "categoryKey", Value: 1}, {Key: "displayCategoryKey", Value: 1}},
		Options: options.Index().SetName(categoryKeysIndex),
	})
	if err != nil {
		return fmt.Errorf("create product category index: %w", err)
	}
	_, err = s.orders.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "orderNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create order indexes: %w", err)
	}
	return nil
}

type productDoc struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	VendorID           string             `bson:"vendorId"`
	Name               string             `bson:"name"`
	Description        string             `bson:"description"`
	Price              string             `bson:"price"`
	Category           string             `bson:"category"`
	CategoryKey        string             `bson:"categoryKey"`
	DisplayCategory    string             `bson:"displayCategory"`
	DisplayCategoryKey string             `bson:"displayCategoryKey"`
	StockQuantity      int                `bson:"stockQuantity"`
	InStock            bool               `bson:"inStock"`
	Images             []string           `bson:"images"`
	AvailableCountries []string           `bson:"availableCountries"`
	CreatedAt          time.Time          `bson:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt"`
}

func (d productDoc) product() (*product.Product, error) {
	price, err := decimal.NewFromString(d.Price)
	if err != nil {
		return nil, fmt.Errorf("product %s price: %w", d.ID.Hex(), err)
	}
	return &product.Product{
		ID:                 d.ID.Hex(),
		VendorID:           d.VendorID,
		Name:               d.Name,
		Description:        d.Description,
		Price:              price,
		Category:           category.ID(d.Category),
		DisplayCategory:    d.DisplayCategory,
		StockQuantity:      d.StockQuantity,
		InStock:            d.InStock,
		Images:             d.Images,
		AvailableCountries: d.AvailableCountries,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}, nil
}

type itemDoc struct {
	ProductID string `bson:"productId"`
	Name      string `bson:"name"`
	Price     string `bson:"price"`
	Quantity  int    `bson:"quantity"`
	Total     string `bson:"total"`
}

type orderDoc struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	OrderNumber       string             `bson:"orderNumber"`
	UserID            string             `bson:"userId"`
	Items             []itemDoc          `bson:"items"`
	Subtotal          string             `bson:"subtotal"`
	Shipping          string             `bson:"shipping"`
	Tax               string             `bson:"tax"`
	Total             string             `bson:"total"`
	Currency          string             `bson:"currency"`
	Status            string             `bson:"status"`
	PaymentStatus     string             `bson:"paymentStatus"`
	PaymentMethod     string             `bson:"paymentMethod"`
	ShippingMethod    string             `bson:"shippingMethod"`
	ShippingAddress   order.Address      `bson:"shippingAddress"`
	BillingAddress    order.Address      `bson:"billingAddress"`
	TrackingNumber    string             `bson:"trackingNumber,omitempty"`
	EstimatedDelivery *time.Time         `bson:"estimatedDelivery,omitempty"`
	CreatedAt         time.Time          `bson:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt"`
}

func newOrderDoc(o *order.Order) orderDoc {
	items := make([]itemDoc, len(o.Items))
	for i, it := range o.Items {
		items[i] = itemDoc{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price.String(),
			Quantity:  it.Quantity,
			Total:     it.Total.String(),
		}
	}
	return orderDoc{
		OrderNumber:       o.OrderNumber,
		UserID:            o.UserID,
		Items:             items,
		Subtotal:          o.Subtotal.String(),
		Shipping:          o.Shipping.String(),
		Tax:               o.Tax.String(),
		Total:             o.Total.String(),
		Currency:          o.Currency,
		Status:            string(o.Status),
		PaymentStatus:     string(o.PaymentStatus),
		PaymentMethod:     o.PaymentMethod,
		ShippingMethod:    o.ShippingMethod,
		ShippingAddress:   o.ShippingAddress,
		BillingAddress:    o.BillingAddress,
		TrackingNumber:    o.TrackingNumber,
		EstimatedDelivery: o.EstimatedDelivery,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

func (d orderDoc) order() (*order.Order, error) {
	var amounts [4]decimal.Decimal
	for i, s := range []string{d.Subtotal, d.Shipping, d.Tax, d.Total} {
		v, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("order %s amount: %w", d.ID.Hex(), err)
		}
		amounts[i] = v
	}

	items := make([]order.Item, len(d.Items))
	for i, it := range d.Items {
		price, err := decimal.NewFromString(it.Price)
		if err != nil {
			return nil, fmt.Errorf("order %s item price: %w", d.ID.Hex(), err)
		}
		total, err := decimal.NewFromString(it.Total)
		if err != nil {
			return nil, fmt.Errorf("order %s item total: %w", d.ID.Hex(), err)
		}
		items[i] = order.Item{ProductID: it.ProductID, Name: it.Name, Price: price, Quantity: it.Quantity, Total: total}
	}

	return &order.Order{
		ID:                d.ID.Hex(),
		OrderNumber:       d.OrderNumber,
		UserID:            d.UserID,
		Items:             items,
		Subtotal:          amounts[0],
		Shipping:          amounts[1],
		Tax:               amounts[2],
		Total:             amounts[3],
		Currency:          d.Currency,
		Status:            order.Status(d.Status),
		PaymentStatus:     order.PaymentStatus(d.PaymentStatus),
		PaymentMethod:     d.PaymentMethod,
		ShippingMethod:    d.ShippingMethod,
		ShippingAddress:   d.ShippingAddress,
		BillingAddress:    d.BillingAddress,
		TrackingNumber:    d.TrackingNumber,
		EstimatedDelivery: d.EstimatedDelivery,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}, nil
}

// GetProduct retrieves a product by its hex id
func (s *MongoStore) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, product.ErrProductNotFound
	}

	var doc productDoc
	err = s.products.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, product.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.product()
}

// UpdateProduct applies the non-nil fields of u
func (s *MongoStore) UpdateProduct(ctx context.Context, id string, u product.Update) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return product.ErrProductNotFound
	}

	set := bson.M{"updatedAt": s.now()}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Price != nil {
		set["price"] = u.Price.String()
	}
	if u.Category != nil {
		set["category"] = string(*u.Category)
		set["categoryKey"] = category.Normalize(string(*u.Category))
	}
	if u.DisplayCategory != nil {
		set["displayCategory"] = *u.DisplayCategory
		set["displayCategoryKey"] = category.Normalize(*u.DisplayCategory)
	}
	if u.StockQuantity != nil {
		set["stockQuantity"] = *u.StockQuantity
	}
	if u.InStock != nil {
		set["inStock"] = *u.InStock
	}
	if u.Images != nil {
		set["images"] = u.Images
	}
	if u.AvailableCountries != nil {
		set["availableCountries"] = u.AvailableCountries
	}

	res, err := s.products.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return product.ErrProductNotFound
	}
	return nil
}

// CreateProduct inserts p and returns it with its generated id
func (s *MongoStore) CreateProduct(ctx context.Context, p *product.Product) (*product.Product, error) {
	doc := productDoc{
		ID:                 primitive.NewObjectID(),
		VendorID:           p.VendorID,
		Name:               p.Name,
		Description:        p.Description,
		Price:              p.Price.String(),
		Category:           string(p.Category),
		CategoryKey:        category.Normalize(string(p.Category)),
		DisplayCategory:    p.DisplayCategory,
		DisplayCategoryKey: category.Normalize(p.DisplayCategory),
		StockQuantity:      p.StockQuantity,
		InStock:            p.InStock,
		Images:             p.Images,
		AvailableCountries: p.AvailableCountries,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
	if _, err := s.products.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	created := *p
	created.ID = doc.ID.Hex()
	return &created, nil
}

// ListProducts returns every product, newest first
func (s *MongoStore) ListProducts(ctx context.Context) ([]*product.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return s.findProducts(ctx, bson.M{}, opts)
}

// ListByCategory prefilters on the stored normalized keys. It requires the
// category index and reports ErrQueryUnsupported when it is missing.
func (s *MongoStore) ListByCategory(ctx context.Context, id category.ID) ([]*product.Product, error) {
	keys := category.MatchKeys(string(id))
	filter := bson.M{"$or": bson.A{
		bson.M{"categoryKey": bson.M{"$in": keys}},
		bson.M{"displayCategoryKey": bson.M{"$in": keys}},
	}}
	opts := options.Find().
		SetHint(categoryKeysIndex).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	products, err := s.findProducts(ctx, filter, opts)
	if isMissingIndex(err) {
		return nil, product.ErrQueryUnsupported
	}
	return products, err
}

// DecrementStock lowers stock with a single pipeline update, flooring at
// zero, and returns the stock before and after.
func (s *MongoStore) DecrementStock(ctx context.Context, id string, quantity int) (int, int, error) {
	next := bson.M{"$max": bson.A{0, bson.M{"$subtract": bson.A{"$stockQuantity", quantity}}}}
	prev, err := s.adjustStock(ctx, id, next)
	if err != nil {
		return 0, 0, err
	}
	return prev, max(prev-quantity, 0), nil
}

// IncrementStock raises stock with a single pipeline update.
func (s *MongoStore) IncrementStock(ctx context.Context, id string, quantity int) (int, int, error) {
	next := bson.M{"$add": bson.A{"$stockQuantity", quantity}}
	prev, err := s.adjustStock(ctx, id, next)
	if err != nil {
		return 0, 0, err
	}
	return prev, prev + quantity, nil
}

func (s *MongoStore) adjustStock(ctx context.Context, id string, next bson.M) (int, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, product.ErrProductNotFound
	}

	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{"stockQuantity": next, "updatedAt": s.now()}}},
		{{Key: "$set", Value: bson.M{"inStock": bson.M{"$gt": bson.A{"$stockQuantity", 0}}}}},
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.Before).
		SetProjection(bson.M{"stockQuantity": 1})

	var before struct {
		StockQuantity int `bson:"stockQuantity"`
	}
	err = s.products.FindOneAndUpdate(ctx, bson.M{"_id": oid}, pipeline, opts).Decode(&before)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, product.ErrProductNotFound
	}
	if err != nil {
		return 0, err
	}
	return before.StockQuantity, nil
}

// CreateOrder inserts o and returns it with its generated id
func (s *MongoStore) CreateOrder(ctx context.Context, o *order.Order) (*order.Order, error) {
	doc := newOrderDoc(o)
	doc.ID = primitive.NewObjectID()
	if _, err := s.orders.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	created := *o
	created.ID = doc.ID.Hex()
	return &created, nil
}

// UpdateOrder applies the non-nil fields of u
func (s *MongoStore) UpdateOrder(ctx context.Context, id string, u order.Update) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return order.ErrOrderNotFound
	}

	updatedAt := u.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = s.now()
	}
	set := bson.M{"updatedAt": updatedAt}
	if u.Status != nil {
		set["status"] = string(*u.Status)
	}
	if u.PaymentStatus != nil {
		set["paymentStatus"] = string(*u.PaymentStatus)
	}
	if u.TrackingNumber != nil {
		set["trackingNumber"] = *u.TrackingNumber
	}
	if u.EstimatedDelivery != nil {
		set["estimatedDelivery"] = *u.EstimatedDelivery
	}
	if u.ShippingAddress != nil {
		set["shippingAddress"] = *u.ShippingAddress
	}
	if u.BillingAddress != nil {
		set["billingAddress"] = *u.BillingAddress
	}

	res, err := s.orders.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

// GetOrder retrieves an order by its hex id
func (s *MongoStore) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, order.ErrOrderNotFound
	}

	var doc orderDoc
	err = s.orders.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, order.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.order()
}

// ListOrders returns the orders of userID, or all orders when userID is empty
func (s *MongoStore) ListOrders(ctx context.Context, userID string) ([]*order.Order, error) {
	filter := bson.M{}
	if userID != "" {
		filter["userId"] = userID
	}
	cur, err := s.orders.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	orders := make([]*order.Order, 0, len(docs))
	for _, d := range docs {
		o, err := d.order()
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (s *MongoStore) findProducts(ctx context.Context, filter any, opts *options.FindOptions) ([]*product.Product, error) {
	cur, err := s.products.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	products := make([]*product.Product, 0, len(docs))
	for _, d := range docs {
		p, err := d.product()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

// isMissingIndex reports whether the server rejected a query hint because
// the index does not exist.
func isMissingIndex(err error) bool {
	if err == nil {
		return false
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == 2 {
		return strings.Contains(cmdErr.Message, "hint")
	}
	return strings.Contains(err.Error(), "hint provided does not correspond to an existing index")
}
