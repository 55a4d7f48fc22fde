package services

import (
	"toko/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const unsplash = "https://images.unsplash.com/"

// SampleProducts returns the demo catalog installed by the init-data
// endpoint. IDs are derived from product names so repeated calls agree.
func SampleProducts() []models.Product {
	return []models.Product{
		sample("Classic White T-Shirt", "29.99", "photo-1581655353564-df123a1eb820",
			models.GenderMen, "shirts",
			[]string{"white", "black", "navy"},
			[]string{"S", "M", "L", "XL"},
			"Premium cotton classic fit t-shirt perfect for everyday wear."),
		sample("Blue Checkered Dress Shirt", "59.99", "photo-1596755094514-f87e34085b2c",
			models.GenderMen, "shirts",
			[]string{"blue", "white"},
			[]string{"S", "M", "L", "XL", "XXL"},
			"Professional dress shirt with classic checkered pattern."),
		sample("Casual Outfit Set", "89.99", "photo-1516762689617-e1cffcef479d",
			models.GenderWomen, "sets",
			[]string{"beige", "brown"},
			[]string{"XS", "S", "M", "L"},
			"Comfortable casual outfit perfect for weekend wear."),
		sample("Premium Gold Watch", "199.99", "photo-1623998021450-85c29c644e0d",
			models.GenderUnisex, "accessories",
			[]string{"gold", "silver"},
			[]string{"One Size"},
			"Elegant gold watch perfect for any occasion."),
		sample("Designer Jeans", "79.99", "photo-1540221652346-e5dd6b50f3e7",
			models.GenderWomen, "jeans",
			[]string{"blue", "black", "gray"},
			[]string{"26", "27", "28", "29", "30", "31", "32"},
			"High-quality designer jeans with perfect fit."),
		sample("Kids Cotton T-Shirt", "19.99", "photo-1581655353564-df123a1eb820",
			models.GenderKids, "shirts",
			[]string{"white", "blue", "pink", "yellow"},
			[]string{"2T", "3T", "4T", "5T", "6", "7", "8"},
			"Soft cotton t-shirt perfect for active kids."),
	}
}

func sample(name, price, photo string, gender models.Gender, category string, colors, sizes []string, description string) models.Product {
	return models.Product{
		ID:          uuid.NewSHA1(uuid.NameSpaceURL, []byte("toko:sample:"+name)).String(),
		Name:        name,
		Price:       decimal.RequireFromString(price),
		Image:       unsplash + photo + "?fm=jpg&q=85",
		Gender:      gender,
		Category:    category,
		Colors:      colors,
		Sizes:       sizes,
		Description: description,
	}
}
