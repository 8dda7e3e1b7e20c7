// Package orderpb contains the protobuf message type for the
// length-prefixed binary format. The type is maintained by hand and
// kept in sync with order.proto; gogo/protobuf marshals it through the
// struct tags.
package orderpb

import (
	"github.com/gogo/protobuf/proto"
)

// Order mirrors the Order message in order.proto.
type Order struct {
	OrderId         string  `protobuf:"bytes,1,opt,name=order_id,json=orderId,proto3" json:"order_id,omitempty"`
	CustomerId      int64   `protobuf:"varint,2,opt,name=customer_id,json=customerId,proto3" json:"customer_id,omitempty"`
	ProductId       int64   `protobuf:"varint,3,opt,name=product_id,json=productId,proto3" json:"product_id,omitempty"`
	ProductName     string  `protobuf:"bytes,4,opt,name=product_name,json=productName,proto3" json:"product_name,omitempty"`
	Category        string  `protobuf:"bytes,5,opt,name=category,proto3" json:"category,omitempty"`
	Quantity        int32   `protobuf:"varint,6,opt,name=quantity,proto3" json:"quantity,omitempty"`
	Price           float64 `protobuf:"fixed64,7,opt,name=price,proto3" json:"price,omitempty"`
	TotalAmount     float64 `protobuf:"fixed64,8,opt,name=total_amount,json=totalAmount,proto3" json:"total_amount,omitempty"`
	OrderDate       int64   `protobuf:"varint,9,opt,name=order_date,json=orderDate,proto3" json:"order_date,omitempty"`
	ShippingCountry string  `protobuf:"bytes,10,opt,name=shipping_country,json=shippingCountry,proto3" json:"shipping_country,omitempty"`
	PaymentMethod   string  `protobuf:"bytes,11,opt,name=payment_method,json=paymentMethod,proto3" json:"payment_method,omitempty"`
	IsReturned      bool    `protobuf:"varint,12,opt,name=is_returned,json=isReturned,proto3" json:"is_returned,omitempty"`
}

func (m *Order) Reset()         { *m = Order{} }
func (m *Order) String() string { return proto.CompactTextString(m) }
func (*Order) ProtoMessage()    {}

func init() {
	proto.RegisterType((*Order)(nil), "formbench.Order")
}
