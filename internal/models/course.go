package models

// Типы курсов. Бесплатный курс не имеет цены и не может быть оплачен.
const (
	CourseTypeFree = "free"
	CourseTypeBuy  = "buy"
	CourseTypeRent = "rent"
)

// Course представляет курс каталога.
// Поле Price равно nil только для бесплатных курсов.
type Course struct {
	ID    int      // Идентификатор курса в хранилище
	Code  string   // Символьный код курса (уникальный)
	Title string   // Название курса
	Type  string   // Тип курса: free, buy или rent
	Price *float64 // Цена курса, nil для бесплатных
}

// DummyCourse используется для приёма данных курса из JSON-запроса
// администратора, прежде чем конвертировать их в Course.
type DummyCourse struct {
	Code  string   `json:"code" validate:"required"`                     // Код курса
	Title string   `json:"title" validate:"required,min=3,max=255"`      // Название
	Type  string   `json:"type" validate:"required,oneof=buy rent free"` // Тип
	Price *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`   // Цена (>=0)
}
