package dto

type ProductResponseDTO struct {
	ID    int    `json:"id" example:"1"`
	Name  string `json:"name" example:"Kettle"`
	Price int64  `json:"price" example:"1000"`
}

type CategoryChildDTO struct {
	ID   int    `json:"id" example:"2"`
	Name string `json:"name" example:"Kitchen"`
}

type CategoryResponseDTO struct {
	ID       int                `json:"id" example:"1"`
	Name     string             `json:"name" example:"Home"`
	Children []CategoryChildDTO `json:"children"`
}
