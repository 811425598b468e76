package storage

import "errors"

// ErrNoMatch возвращается условным обновлением, когда ни одна строка не
// подошла под предикат. Это не сбой: обмен уже разрешён другой стороной
// либо вызывающий не имеет права на переход.
var ErrNoMatch = errors.New("условие обновления не выполнено")

// ErrSwapNotFound возвращается, когда предложение обмена не существует
var ErrSwapNotFound = errors.New("предложение обмена не найдено")

// ErrItemNotFound возвращается, когда вещь не существует
var ErrItemNotFound = errors.New("вещь не найдена")

// ErrItemArchived возвращается при попытке обмена на снятую с публикации вещь
var ErrItemArchived = errors.New("вещь снята с публикации")

// ErrDuplicateSwap возвращается, когда по той же паре вещей уже есть
// предложение в ожидании
var ErrDuplicateSwap = errors.New("такое предложение обмена уже существует")

// ErrAlreadyInWishlist возвращается, когда вещь уже есть в списке желаний
var ErrAlreadyInWishlist = errors.New("вещь уже добавлена в список желаний")

// ErrNotFound возвращается для прочих отсутствующих записей
var ErrNotFound = errors.New("запись не найдена")
