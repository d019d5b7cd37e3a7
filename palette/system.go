package palette

// system is a subset of the official LDConfig.ldr palette.
var system = []Entry{
	{Code: 0, Name: "Black", RGB: 0x1B2A34, Edge: 0x808080, Luminance: -1},
	{Code: 1, Name: "Blue", RGB: 0x1E5AA8, Edge: 0x333333, Luminance: -1},
	{Code: 2, Name: "Green", RGB: 0x00852B, Edge: 0x333333, Luminance: -1},
	{Code: 3, Name: "Dark_Turquoise", RGB: 0x069D9F, Edge: 0x333333, Luminance: -1},
	{Code: 4, Name: "Red", RGB: 0xB40000, Edge: 0x333333, Luminance: -1},
	{Code: 5, Name: "Dark_Pink", RGB: 0xD3359D, Edge: 0x333333, Luminance: -1},
	{Code: 6, Name: "Brown", RGB: 0x543324, Edge: 0x1E1E1E, Luminance: -1},
	{Code: 7, Name: "Light_Grey", RGB: 0x8A928D, Edge: 0x333333, Luminance: -1},
	{Code: 8, Name: "Dark_Grey", RGB: 0x545955, Edge: 0x333333, Luminance: -1},
	{Code: 9, Name: "Light_Blue", RGB: 0x97CBD9, Edge: 0x333333, Luminance: -1},
	{Code: 10, Name: "Bright_Green", RGB: 0x58AB41, Edge: 0x333333, Luminance: -1},
	{Code: 11, Name: "Light_Turquoise", RGB: 0x00AAA4, Edge: 0x333333, Luminance: -1},
	{Code: 12, Name: "Salmon", RGB: 0xF06D61, Edge: 0x333333, Luminance: -1},
	{Code: 13, Name: "Pink", RGB: 0xF6A9BB, Edge: 0x333333, Luminance: -1},
	{Code: 14, Name: "Yellow", RGB: 0xFAC80A, Edge: 0x333333, Luminance: -1},
	{Code: 15, Name: "White", RGB: 0xF4F4F4, Edge: 0x333333, Luminance: -1},
	{Code: 16, Name: "Main_Colour", RGB: 0x7F7F7F, Edge: 0x333333, Luminance: -1},
	{Code: 17, Name: "Light_Green", RGB: 0xADD9A8, Edge: 0x333333, Luminance: -1},
	{Code: 18, Name: "Light_Yellow", RGB: 0xFFD67F, Edge: 0x333333, Luminance: -1},
	{Code: 19, Name: "Tan", RGB: 0xE4CD9E, Edge: 0x333333, Luminance: -1},
	{Code: 22, Name: "Purple", RGB: 0x81007B, Edge: 0x333333, Luminance: -1},
	{Code: 24, Name: "Edge_Colour", RGB: 0x7F7F7F, Edge: 0x333333, Luminance: -1},
	{Code: 25, Name: "Orange", RGB: 0xD67923, Edge: 0x333333, Luminance: -1},
	{Code: 26, Name: "Magenta", RGB: 0x901F76, Edge: 0x333333, Luminance: -1},
	{Code: 27, Name: "Lime", RGB: 0xA5CA18, Edge: 0x333333, Luminance: -1},
	{Code: 28, Name: "Dark_Tan", RGB: 0x897D62, Edge: 0x333333, Luminance: -1},
	{Code: 33, Name: "Trans_Dark_Blue", RGB: 0x0020A0, Edge: 0x000064, Alpha: 128, Luminance: -1},
	{Code: 34, Name: "Trans_Green", RGB: 0x237841, Edge: 0x1E5A32, Alpha: 128, Luminance: -1},
	{Code: 36, Name: "Trans_Red", RGB: 0xC91A09, Edge: 0x880000, Alpha: 128, Luminance: -1},
	{Code: 41, Name: "Trans_Medium_Blue", RGB: 0x559AB7, Edge: 0x196973, Alpha: 128, Luminance: -1},
	{Code: 46, Name: "Trans_Yellow", RGB: 0xF5CD2F, Edge: 0x8E7400, Alpha: 128, Luminance: -1},
	{Code: 47, Name: "Trans_Clear", RGB: 0xFCFCFC, Edge: 0xC3C3C3, Alpha: 128, Luminance: -1},
	{Code: 70, Name: "Reddish_Brown", RGB: 0x5F3109, Edge: 0x333333, Luminance: -1},
	{Code: 71, Name: "Light_Bluish_Grey", RGB: 0x969696, Edge: 0x333333, Luminance: -1},
	{Code: 72, Name: "Dark_Bluish_Grey", RGB: 0x646464, Edge: 0x333333, Luminance: -1},
	{Code: 80, Name: "Metallic_Silver", RGB: 0x767676, Edge: 0x333333, Luminance: -1, Material: "METAL"},
	{Code: 334, Name: "Chrome_Gold", RGB: 0xBBA53D, Edge: 0xBBB23D, Luminance: -1, Material: "CHROME"},
	{Code: 383, Name: "Chrome_Silver", RGB: 0xE0E0E0, Edge: 0xA4A4A4, Luminance: -1, Material: "CHROME"},
}
